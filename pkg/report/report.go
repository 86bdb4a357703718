// Package report renders quality reports for humans and machines: a colored
// narrative breakdown, JSON, and YAML, plus the JSON schema of the structured
// payload for CI consumers. Renderers write to an io.Writer and never talk to
// the terminal directly.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/scoring"
)

const (
	FormatNarrative = "narrative"
	FormatJSON      = "json"
	FormatYAML      = "yaml"
)

// ValidateFormat checks a requested output format.
func ValidateFormat(format string) error {
	switch format {
	case FormatNarrative, FormatJSON, FormatYAML:
		return nil
	default:
		return errors.Wrapf(rubric.ErrInvalidConfiguration, "unknown format '%s', want narrative, json, or yaml", format)
	}
}

// DocumentError is a per-document failure entry in the structured payload.
type DocumentError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// BatchReport is the structured (json/yaml) payload of a scoring run.
type BatchReport struct {
	Reports []*scoring.QualityReport `json:"reports" yaml:"reports"`
	Errors  []DocumentError          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Summary *Summary                 `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Output renders the results of a scoring run in one format.
type Output struct {
	Format string
	Batch  BatchReport
}

// NewOutput collects batch results into a renderable output, preserving
// input order. The summary is attached for multi-document runs.
func NewOutput(results []scoring.BatchResult, format string) *Output {
	output := &Output{Format: format}
	for _, result := range results {
		if result.Err != nil {
			output.Batch.Errors = append(output.Batch.Errors, DocumentError{
				Path:  result.Path,
				Error: result.Err.Error(),
			})
			continue
		}
		output.Batch.Reports = append(output.Batch.Reports, result.Report)
	}
	if len(results) > 1 {
		output.Batch.Summary = BuildSummary(results)
	}
	return output
}

// NewDocumentOutput wraps a single report without a batch summary.
func NewDocumentOutput(report *scoring.QualityReport, format string) *Output {
	return &Output{
		Format: format,
		Batch:  BatchReport{Reports: []*scoring.QualityReport{report}},
	}
}

// Render writes the output in its configured format.
func (o *Output) Render(w io.Writer) error {
	switch o.Format {
	case FormatJSON:
		return o.renderJSON(w)
	case FormatYAML:
		return o.renderYAML(w)
	default:
		return o.renderNarrative(w)
	}
}

func (o *Output) renderJSON(w io.Writer) error {
	jsonData, err := json.MarshalIndent(o.Batch, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func (o *Output) renderYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(o.Batch); err != nil {
		return errors.Wrap(err, "error generating YAML output")
	}
	return encoder.Close()
}
