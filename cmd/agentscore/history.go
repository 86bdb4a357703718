package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentscore/pkg/history"
	"github.com/jingkaihe/agentscore/pkg/presenter"
)

// HistoryListConfig holds configuration for the history list command
type HistoryListConfig struct {
	Name       string
	Limit      int
	JSONOutput bool
}

// NewHistoryListConfig creates a new HistoryListConfig with default values
func NewHistoryListConfig() *HistoryListConfig {
	return &HistoryListConfig{
		Name:       "",
		Limit:      0,
		JSONOutput: false,
	}
}

// HistoryShowConfig holds configuration for the history show command
type HistoryShowConfig struct {
	Format string
}

// NewHistoryShowConfig creates a new HistoryShowConfig with default values
func NewHistoryShowConfig() *HistoryShowConfig {
	return &HistoryShowConfig{
		Format: "narrative",
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded evaluations",
	Long:  `List, view, and diff evaluations recorded with score --record.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded evaluations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getHistoryListConfigFromFlags(cmd)
		listEvaluationsCmd(ctx, config)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [evaluationID]",
	Short: "Show a recorded evaluation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getHistoryShowConfigFromFlags(cmd)
		showEvaluationCmd(ctx, args[0], config)
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff [name]",
	Short: "Diff the two most recent evaluations of an agent",
	Long:  `Print a unified diff of the narrative reports from the two most recent recorded evaluations of the named agent.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		diffEvaluationsCmd(ctx, args[0])
	},
}

func init() {
	listDefaults := NewHistoryListConfig()
	historyListCmd.Flags().String("name", listDefaults.Name, "Filter evaluations by agent name")
	historyListCmd.Flags().Int("limit", listDefaults.Limit, "Maximum number of evaluations to display")
	historyListCmd.Flags().Bool("json", listDefaults.JSONOutput, "Output in JSON format")

	showDefaults := NewHistoryShowConfig()
	historyShowCmd.Flags().String("format", showDefaults.Format, "Output format: narrative or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDiffCmd)
	rootCmd.AddCommand(historyCmd)
}

// getHistoryListConfigFromFlags extracts list configuration from command flags
func getHistoryListConfigFromFlags(cmd *cobra.Command) *HistoryListConfig {
	config := NewHistoryListConfig()

	if name, err := cmd.Flags().GetString("name"); err == nil {
		config.Name = name
	}
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

// getHistoryShowConfigFromFlags extracts show configuration from command flags
func getHistoryShowConfigFromFlags(cmd *cobra.Command) *HistoryShowConfig {
	config := NewHistoryShowConfig()

	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}

	return config
}

// OutputFormat defines the format of the output
type OutputFormat int

const (
	TableFormat OutputFormat = iota
	JSONFormat
)

// HistoryEntryOutput represents a single recorded evaluation for output
type HistoryEntryOutput struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Path           string    `json:"path"`
	Composite      float64   `json:"composite"`
	Classification string    `json:"classification"`
	EarnedTier     string    `json:"earned_tier,omitempty"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// HistoryListOutput represents the output for history list
type HistoryListOutput struct {
	Entries []HistoryEntryOutput
	Format  OutputFormat
}

// NewHistoryListOutput creates a new HistoryListOutput
func NewHistoryListOutput(records []history.Record, format OutputFormat) *HistoryListOutput {
	output := &HistoryListOutput{
		Entries: make([]HistoryEntryOutput, 0, len(records)),
		Format:  format,
	}

	for _, record := range records {
		output.Entries = append(output.Entries, HistoryEntryOutput{
			ID:             record.ID,
			Name:           record.Name,
			Path:           record.Path,
			Composite:      record.Composite,
			Classification: record.Classification,
			EarnedTier:     record.EarnedTier,
			EvaluatedAt:    record.EvaluatedAt,
		})
	}

	return output
}

// Render formats and renders the evaluation list to the specified writer
func (o *HistoryListOutput) Render(w io.Writer) error {
	if o.Format == JSONFormat {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

// renderJSON renders the output in JSON format
func (o *HistoryListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Evaluations []HistoryEntryOutput `json:"evaluations"`
	}

	jsonData, err := json.MarshalIndent(jsonOutput{Evaluations: o.Entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("error generating JSON output: %v", err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// renderTable renders the output in table format
func (o *HistoryListOutput) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tName\tComposite\tResult\tTier\tEvaluated")
	fmt.Fprintln(tw, "--\t----\t---------\t------\t----\t---------")

	for _, entry := range o.Entries {
		tier := entry.EarnedTier
		if tier == "" {
			tier = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\t%s\t%s\n",
			entry.ID,
			entry.Name,
			entry.Composite,
			strings.ToUpper(entry.Classification),
			tier,
			entry.EvaluatedAt.Format(time.RFC3339),
		)
	}

	return tw.Flush()
}

// openHistoryStore opens the evaluation history at the default location
func openHistoryStore(ctx context.Context) *history.Store {
	store, err := history.Open(ctx, "")
	if err != nil {
		presenter.Error(err, "Failed to open evaluation history")
		os.Exit(1)
	}
	return store
}

// listEvaluationsCmd displays recorded evaluations
func listEvaluationsCmd(ctx context.Context, config *HistoryListConfig) {
	store := openHistoryStore(ctx)
	defer store.Close()

	records, err := store.List(ctx, config.Name, config.Limit)
	if err != nil {
		presenter.Error(err, "Failed to list evaluations")
		os.Exit(1)
	}

	format := TableFormat
	if config.JSONOutput {
		format = JSONFormat
	}

	if err := NewHistoryListOutput(records, format).Render(os.Stdout); err != nil {
		presenter.Error(err, "Failed to render evaluation list")
		os.Exit(1)
	}
}

// showEvaluationCmd displays one recorded evaluation
func showEvaluationCmd(ctx context.Context, id string, config *HistoryShowConfig) {
	store := openHistoryStore(ctx)
	defer store.Close()

	record, err := store.Get(ctx, id)
	if err != nil {
		presenter.Error(err, "Failed to load evaluation")
		os.Exit(1)
	}

	switch config.Format {
	case "json":
		jsonData, err := json.MarshalIndent(record.Report, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to render evaluation")
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	case "narrative":
		fmt.Print(record.Narrative)
	default:
		presenter.Error(fmt.Errorf("unknown format '%s', want narrative or json", config.Format), "Invalid output format")
		os.Exit(1)
	}
}

// diffEvaluationsCmd prints the unified diff between the two most recent
// evaluations of an agent
func diffEvaluationsCmd(ctx context.Context, name string) {
	store := openHistoryStore(ctx)
	defer store.Close()

	diff, err := store.Diff(ctx, name)
	if err != nil {
		presenter.Error(err, "Failed to diff evaluations")
		os.Exit(1)
	}

	if diff == "" {
		presenter.Info(fmt.Sprintf("No scoring changes between the last two evaluations of %s", name))
		return
	}

	fmt.Print(diff)
}
