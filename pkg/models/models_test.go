package models

import (
	"testing"
)

func TestParseBodyPart(t *testing.T) {
	tests := []struct {
		input    string
		expected BodyPart
		ok       bool
	}{
		{"brain", BodyPartBrain, true},
		{"BRAIN", BodyPartBrain, true},
		{" Chest ", BodyPartChest, true},
		{"extremities", BodyPartExtremities, true},
		{"breast", BodyPartBreast, true},
		{"unknown", BodyPartUnknown, true},
		{"", "", false},
		{"elbow", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseBodyPart(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseBodyPart(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got != tt.expected {
			t.Errorf("ParseBodyPart(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestBodyPartIsValid(t *testing.T) {
	if !BodyPartBrain.IsValid() {
		t.Error("Expected brain to be valid")
	}
	if BodyPart("elbow").IsValid() {
		t.Error("Expected elbow to be invalid")
	}
}

func TestBodyPartDescriptionsComplete(t *testing.T) {
	parts := []BodyPart{
		BodyPartBrain, BodyPartHeart, BodyPartChest, BodyPartAbdomen,
		BodyPartSpine, BodyPartExtremities, BodyPartBreast, BodyPartUnknown,
	}
	for _, part := range parts {
		if _, ok := BodyPartDescriptions[part]; !ok {
			t.Errorf("Missing description for body part %s", part)
		}
	}
}

func TestConditionScores_Top(t *testing.T) {
	scores := ConditionScores{
		Scores: map[Condition]float64{
			ConditionTumor:      40,
			ConditionHemorrhage: 55,
			ConditionFracture:   10,
		},
	}

	top, score := scores.Top()
	if top != ConditionHemorrhage {
		t.Errorf("Expected hemorrhage as top condition, got %s", top)
	}
	if score != 55 {
		t.Errorf("Expected top score 55, got %f", score)
	}
}

func TestConditionScores_TopTieBreak(t *testing.T) {
	// Ties resolve to the earliest condition in the fixed scoring order
	scores := ConditionScores{
		Scores: map[Condition]float64{
			ConditionTumor:      40,
			ConditionHemorrhage: 40,
			ConditionFracture:   40,
		},
	}

	top, _ := scores.Top()
	if top != ConditionTumor {
		t.Errorf("Expected tie to resolve to tumor, got %s", top)
	}
}

func TestConditionScores_TopEmpty(t *testing.T) {
	scores := ConditionScores{Scores: map[Condition]float64{}}

	top, score := scores.Top()
	if top != "" || score != 0 {
		t.Errorf("Expected empty top for unscored set, got %s/%f", top, score)
	}
}

func TestConditionScores_Secondary(t *testing.T) {
	scores := ConditionScores{
		Scores: map[Condition]float64{
			ConditionTumor:      60,
			ConditionHemorrhage: 30,
			ConditionFracture:   20,
		},
	}

	secondary := scores.Secondary()
	if len(secondary) != 1 || secondary[0] != ConditionHemorrhage {
		t.Errorf("Expected only hemorrhage as secondary, got %v", secondary)
	}
}

func TestConditionScores_SecondaryOrderStable(t *testing.T) {
	scores := ConditionScores{
		Scores: map[Condition]float64{
			ConditionTumor:      10,
			ConditionHemorrhage: 90,
			ConditionFracture:   30,
		},
	}

	for i := 0; i < 20; i++ {
		secondary := scores.Secondary()
		if len(secondary) != 1 || secondary[0] != ConditionFracture {
			t.Fatalf("Expected stable [fracture] secondary list, got %v", secondary)
		}
	}
}

func TestScoredConditionsOrder(t *testing.T) {
	expected := []Condition{ConditionTumor, ConditionHemorrhage, ConditionFracture}
	if len(ScoredConditions) != len(expected) {
		t.Fatalf("Expected %d scored conditions, got %d", len(expected), len(ScoredConditions))
	}
	for i, c := range expected {
		if ScoredConditions[i] != c {
			t.Errorf("Expected condition %s at index %d, got %s", c, i, ScoredConditions[i])
		}
	}
}

func TestBodyPartFeatures_Empty(t *testing.T) {
	var features BodyPartFeatures
	if !features.Empty() {
		t.Error("Expected zero-value body part features to be empty")
	}

	features.Bones = &BoneFeatures{BoneCount: 2}
	if features.Empty() {
		t.Error("Expected populated body part features to be non-empty")
	}
}
