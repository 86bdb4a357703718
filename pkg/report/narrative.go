package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/scoring"
)

func (o *Output) renderNarrative(w io.Writer) error {
	for i, qualityReport := range o.Batch.Reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderReport(w, qualityReport)
	}

	if len(o.Batch.Errors) > 0 {
		if len(o.Batch.Reports) > 0 {
			fmt.Fprintln(w)
		}
		errorColor := color.New(color.FgRed, color.Bold)
		for _, docErr := range o.Batch.Errors {
			errorColor.Fprint(w, "[ERROR] ")
			fmt.Fprintf(w, "%s: %s\n", docErr.Path, docErr.Error)
		}
	}

	if o.Batch.Summary != nil {
		fmt.Fprintln(w)
		return o.Batch.Summary.render(w)
	}
	return nil
}

func renderReport(w io.Writer, report *scoring.QualityReport) {
	headerColor := color.New(color.Bold)
	headerColor.Fprint(w, report.Name)
	fmt.Fprintf(w, " (%s)\n", report.Path)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	fmt.Fprintf(w, "Composite %.1f/10  ", report.Composite)
	classificationColor(report.Classification).Fprint(w, strings.ToUpper(string(report.Classification)))

	details := make([]string, 0, 3)
	if report.Tier != "" {
		details = append(details, "tier "+report.Tier)
	}
	details = append(details, fmt.Sprintf("threshold %.1f", report.Threshold))
	if report.EarnedTier != "" {
		details = append(details, "earns "+report.EarnedTier)
	}
	fmt.Fprintf(w, "  (%s)\n", strings.Join(details, ", "))

	fmt.Fprintln(w)
	for _, dim := range report.Dimensions {
		fmt.Fprintf(w, "  %-24s%5.1f\n", rubric.DisplayName(dim.Dimension), dim.Value)
		for _, reason := range dim.Rationale {
			fmt.Fprintf(w, "      %s\n", reason)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations:")
		for i, rec := range report.Recommendations {
			fmt.Fprintf(w, "  %d. [%s] %s (+%.1f)\n", i+1, rubric.DisplayName(rec.Dimension), rec.Hint, rec.Gain)
		}
	}
}

func classificationColor(classification scoring.Classification) *color.Color {
	switch classification {
	case scoring.ClassificationPass:
		return color.New(color.FgGreen, color.Bold)
	case scoring.ClassificationWarn:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// PlainNarrative renders a single report as uncolored narrative text. The
// result carries no timestamps or escape sequences, so stored copies of it
// diff cleanly across evaluations.
func PlainNarrative(report *scoring.QualityReport) (string, error) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	var buf bytes.Buffer
	if err := NewDocumentOutput(report, FormatNarrative).Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
