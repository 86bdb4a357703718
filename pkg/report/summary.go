package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jingkaihe/agentscore/pkg/scoring"
)

// Summary aggregates a batch run: classification counts, composite spread,
// and the earned-tier distribution.
type Summary struct {
	Documents        int            `json:"documents" yaml:"documents"`
	Scored           int            `json:"scored" yaml:"scored"`
	Errored          int            `json:"errored" yaml:"errored"`
	Passed           int            `json:"passed" yaml:"passed"`
	Warned           int            `json:"warned" yaml:"warned"`
	Failed           int            `json:"failed" yaml:"failed"`
	MeanComposite    float64        `json:"mean_composite" yaml:"mean_composite"`
	MinComposite     float64        `json:"min_composite" yaml:"min_composite"`
	MaxComposite     float64        `json:"max_composite" yaml:"max_composite"`
	TierDistribution map[string]int `json:"tier_distribution,omitempty" yaml:"tier_distribution,omitempty"`
	FailingDocuments []string       `json:"failing_documents,omitempty" yaml:"failing_documents,omitempty"`
}

// BuildSummary folds batch results into a Summary. Composite statistics
// cover scored documents only; errored documents are counted but carry no
// composite. Documents that clear no tier land under "none" in the
// distribution.
func BuildSummary(results []scoring.BatchResult) *Summary {
	summary := &Summary{Documents: len(results), TierDistribution: map[string]int{}}

	sum := 0.0
	for _, result := range results {
		if result.Err != nil {
			summary.Errored++
			continue
		}
		report := result.Report
		summary.Scored++
		sum += report.Composite
		if summary.Scored == 1 || report.Composite < summary.MinComposite {
			summary.MinComposite = report.Composite
		}
		if summary.Scored == 1 || report.Composite > summary.MaxComposite {
			summary.MaxComposite = report.Composite
		}

		switch report.Classification {
		case scoring.ClassificationPass:
			summary.Passed++
		case scoring.ClassificationWarn:
			summary.Warned++
		default:
			summary.Failed++
			summary.FailingDocuments = append(summary.FailingDocuments, result.Path)
		}

		tier := report.EarnedTier
		if tier == "" {
			tier = "none"
		}
		summary.TierDistribution[tier]++
	}

	if summary.Scored > 0 {
		summary.MeanComposite = sum / float64(summary.Scored)
	} else {
		summary.TierDistribution = nil
	}
	return summary
}

func (s *Summary) render(w io.Writer) error {
	headerColor := color.New(color.Bold)
	headerColor.Fprintln(w, "Summary")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Documents\t%d (%d scored, %d errored)\n", s.Documents, s.Scored, s.Errored)
	fmt.Fprintf(tw, "Classification\t%d pass, %d warn, %d fail\n", s.Passed, s.Warned, s.Failed)
	if s.Scored > 0 {
		fmt.Fprintf(tw, "Composite\tmean %.1f, min %.1f, max %.1f\n", s.MeanComposite, s.MinComposite, s.MaxComposite)
		fmt.Fprintf(tw, "Earned tiers\t%s\n", s.tierLine())
	}
	if len(s.FailingDocuments) > 0 {
		fmt.Fprintf(tw, "Failing\t%s\n", strings.Join(s.FailingDocuments, ", "))
	}
	return tw.Flush()
}

func (s *Summary) tierLine() string {
	names := make([]string, 0, len(s.TierDistribution))
	for name := range s.TierDistribution {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d", name, s.TierDistribution[name]))
	}
	return strings.Join(parts, ", ")
}
