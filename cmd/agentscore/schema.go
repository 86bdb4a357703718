package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentscore/pkg/presenter"
	"github.com/jingkaihe/agentscore/pkg/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the report output",
	Long: `Print the JSON schema describing the structured report emitted by
score --format json, for CI consumers that validate or post-process reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonData, err := json.MarshalIndent(report.Schema(), "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to generate schema")
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
