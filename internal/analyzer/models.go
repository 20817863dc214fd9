package analyzer

import (
	"github.com/medscope-ai/medscan/pkg/models"
)

// AnalysisResult is an alias to the shared models.AnalysisResult so pipeline
// internals and transport share one result type.
type AnalysisResult = models.AnalysisResult
