package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/agentscore/pkg/logger"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("AGENTSCORE")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentscore")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

// exitCode is set by commands that report failure counts through the process
// exit status. main applies it after the command tree has fully unwound.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "agentscore",
	Short: "Deterministic quality scoring for agent documents",
	Long: `Agentscore evaluates agent definition documents (YAML frontmatter plus a
markdown body) against a rubric of five quality dimensions and reports a
composite score, a pass/warn/fail classification, and concrete
recommendations for raising the score.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLogLevel(viper.GetString("log_level"))
		logger.SetLogFormat(viper.GetString("log_format"))

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("Failed to initialize tracing")
			return
		}
		tracingShutdown = shutdown
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tracingShutdown != nil {
			if err := tracingShutdown(cmd.Context()); err != nil {
				logger.G(cmd.Context()).WithError(err).Warn("Failed to shut down tracing")
			}
		}
	},
	// Default behavior is to forward paths to the score command
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			scoreCmd.Run(cmd, args)
		} else {
			cmd.Help()
			os.Exit(1)
		}
	},
}

func main() {
	// Add global flags
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	os.Exit(exitCode)
}
