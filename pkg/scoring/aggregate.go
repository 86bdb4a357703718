package scoring

import (
	"github.com/jingkaihe/agentscore/pkg/rubric"
)

// Aggregate computes the weighted composite of the dimension scores. Weights
// come from the validated rubric, so the result stays within [0,10].
func Aggregate(scores []DimensionScore, cfg *rubric.Config) float64 {
	composite := 0.0
	for _, score := range scores {
		composite += cfg.Weights[score.Dimension] * score.Value
	}
	return composite
}

// Classify buckets a composite against a threshold. A composite exactly on
// the threshold passes; within warnMargin below it warns; further below it
// fails.
func Classify(composite, threshold, warnMargin float64) Classification {
	switch {
	case composite+rubric.ClassifyTolerance >= threshold:
		return ClassificationPass
	case composite+rubric.ClassifyTolerance >= threshold-warnMargin:
		return ClassificationWarn
	default:
		return ClassificationFail
	}
}
