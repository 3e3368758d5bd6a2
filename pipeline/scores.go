package pipeline

import "math"

// Dimension weights for the overall score. The model is told these weights
// but drifts from them in practice, so overall is always recomputed here.
const (
	weightInsightDensity  = 0.40
	weightSignalToNoise   = 0.20
	weightActionability   = 0.20
	weightContrarianIndex = 0.10
	weightFreshness       = 0.05
	weightHostQuality     = 0.05
)

// NeutralScore fills dimensions the legacy schema never captured, and the
// legacy failure fallback.
const NeutralScore = 5

// ComputeOverall returns the weighted sum of the six dimensions rounded to
// one decimal. The Overall field of the input is ignored.
func ComputeOverall(s Scores) float64 {
	overall := s.InsightDensity*weightInsightDensity +
		s.SignalToNoise*weightSignalToNoise +
		s.Actionability*weightActionability +
		s.ContrarianIndex*weightContrarianIndex +
		s.Freshness*weightFreshness +
		s.HostQuality*weightHostQuality
	return math.Round(overall*10) / 10
}

// WithRecomputedOverall returns a copy with Overall replaced by the locally
// computed weighted sum.
func (s Scores) WithRecomputedOverall() Scores {
	s.Overall = ComputeOverall(s)
	return s
}

// SpicyFromObviousness derives a 1-5 spiciness when the model did not declare
// one directly.
func SpicyFromObviousness(level string) int {
	switch level {
	case ObviousnessTrulyNonObvious:
		return 5
	case ObviousnessModeratelyNonObvious:
		return 3
	case ObviousnessBestAvailable:
		return 1
	default:
		return 2
	}
}

// ResolveSpicyRating prefers the model-declared rating when it is in range
// and falls back to the obviousness mapping otherwise.
func ResolveSpicyRating(in Insight) int {
	if in.SpicyRating >= 1 && in.SpicyRating <= 5 {
		return in.SpicyRating
	}
	return SpicyFromObviousness(in.ObviousnessLevel)
}
