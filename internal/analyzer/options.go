package analyzer

// AnalysisOptions provides flexible configuration for medical image
// analysis.
type AnalysisOptions struct {
	// Output toggles
	IncludeAdvancedFeatures bool
	IncludeRiskAssessment   bool

	// Photograph gate
	SkipPhotographGate  bool
	PhotographThreshold float64

	// Feature toggles
	SkipBodyPartFeatures bool
	SkipQualityArtifacts bool

	// Performance options
	UseWorkerPool bool
	MaxWorkers    int
}

// DefaultOptions returns default analysis options.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeAdvancedFeatures: true,
		IncludeRiskAssessment:   true,
		SkipPhotographGate:      false,
		PhotographThreshold:     photographThreshold,
		SkipBodyPartFeatures:    false,
		SkipQualityArtifacts:    false,
		UseWorkerPool:           true,
		MaxWorkers:              0, // Use default CPU count
	}
}

// ScreeningOptions returns options for a lean first-pass screen: no feature
// record or risk assessment in the output, and the per-anatomy feature and
// artifact passes are skipped.
func ScreeningOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.IncludeAdvancedFeatures = false
	opts.IncludeRiskAssessment = false
	opts.SkipBodyPartFeatures = true
	opts.SkipQualityArtifacts = true
	return opts
}

// WithPhotographThreshold overrides the photograph gate cutoff.
func (opts AnalysisOptions) WithPhotographThreshold(threshold float64) AnalysisOptions {
	opts.PhotographThreshold = threshold
	return opts
}

// WithoutPhotographGate disables the non-diagnostic photograph short
// circuit.
func (opts AnalysisOptions) WithoutPhotographGate() AnalysisOptions {
	opts.SkipPhotographGate = true
	return opts
}

// WithoutRiskAssessment drops the extended risk record from results.
func (opts AnalysisOptions) WithoutRiskAssessment() AnalysisOptions {
	opts.IncludeRiskAssessment = false
	return opts
}
