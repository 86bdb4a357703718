// Package scoring turns extracted document features into dimension scores,
// a weighted composite, and a classified quality report. Scoring is pure and
// deterministic: the same document and rubric always produce the same scores,
// rationale, and recommendations.
package scoring

import (
	"fmt"
	"time"
)

// Classification buckets a composite score against the active threshold.
type Classification string

const (
	ClassificationPass Classification = "pass"
	ClassificationWarn Classification = "warn"
	ClassificationFail Classification = "fail"
)

// DimensionScore is one dimension's clamped score together with the rubric
// clauses that produced it. Rationale is never empty: when no clause fires
// the score basis is still recorded.
type DimensionScore struct {
	Dimension string   `json:"dimension" yaml:"dimension"`
	Value     float64  `json:"value" yaml:"value"`
	Rationale []string `json:"rationale" yaml:"rationale"`
}

func (s *DimensionScore) addRationale(format string, args ...interface{}) {
	s.Rationale = append(s.Rationale, fmt.Sprintf(format, args...))
}

// Recommendation is one improvement hint. Gain is the composite headroom the
// dimension still has (weight x distance to a perfect score).
type Recommendation struct {
	Dimension string  `json:"dimension" yaml:"dimension"`
	Hint      string  `json:"hint" yaml:"hint"`
	Gain      float64 `json:"gain" yaml:"gain"`
}

// QualityReport is the complete scoring outcome for one document. Tier is the
// tier the run scored against (empty when a raw threshold was supplied);
// EarnedTier is the highest tier the composite clears on the ladder.
type QualityReport struct {
	Name            string           `json:"name" yaml:"name"`
	Path            string           `json:"path" yaml:"path"`
	Tier            string           `json:"tier,omitempty" yaml:"tier,omitempty"`
	EarnedTier      string           `json:"earned_tier,omitempty" yaml:"earned_tier,omitempty"`
	Threshold       float64          `json:"threshold" yaml:"threshold"`
	Composite       float64          `json:"composite" yaml:"composite"`
	Classification  Classification   `json:"classification" yaml:"classification"`
	Dimensions      []DimensionScore `json:"dimensions" yaml:"dimensions"`
	Recommendations []Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	EvaluatedAt     time.Time        `json:"evaluated_at" yaml:"evaluated_at"`
}

// Passed reports whether the document cleared its threshold.
func (r *QualityReport) Passed() bool {
	return r.Classification == ClassificationPass
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 10 {
		return 10
	}
	return value
}
