package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/agentscore/pkg/logger"
	"github.com/jingkaihe/agentscore/pkg/presenter"
	"github.com/jingkaihe/agentscore/pkg/report"
	"github.com/jingkaihe/agentscore/pkg/rubric"
	"github.com/jingkaihe/agentscore/pkg/scoring"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	Tier           string
	IgnoreDirs     []string
	IncludePattern string
	Verbosity      string
	DebounceTime   int
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		Tier:           scoring.DefaultTier,
		IgnoreDirs:     []string{".git", "node_modules"},
		IncludePattern: "*.md",
		Verbosity:      "normal",
		DebounceTime:   500,
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	validVerbosityLevels := []string{"quiet", "normal", "verbose"}
	valid := false
	for _, level := range validVerbosityLevels {
		if c.Verbosity == level {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Errorf("invalid verbosity level: %s, must be one of: %s", c.Verbosity, strings.Join(validVerbosityLevels, ", "))
	}

	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}

	return nil
}

// FileEvent represents a file system event with additional metadata
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and rescore agent documents on change",
	Long: `Continuously monitors a directory tree and rescores any agent document
whenever it is written or created, printing a fresh narrative report.

By default it watches the current directory and all subdirectories,
ignoring common directories like .git and node_modules.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		config := getWatchConfigFromFlags(cmd)
		presenter.SetQuiet(config.Verbosity == "quiet")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("\nCancellation requested, shutting down...")
			cancel()
		}()

		if err := config.Validate(); err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		cfg, err := rubric.LoadConfig()
		if err != nil {
			presenter.Error(err, "Invalid rubric configuration")
			os.Exit(1)
		}
		evaluator, err := scoring.NewEvaluator(cfg, scoring.WithTier(config.Tier))
		if err != nil {
			presenter.Error(err, "Invalid rubric configuration")
			os.Exit(1)
		}

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		runWatchMode(ctx, evaluator, root, config)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().String("tier", defaults.Tier, "Tier to score against")
	watchCmd.Flags().StringSliceP("ignore", "i", defaults.IgnoreDirs, "Directories to ignore")
	watchCmd.Flags().StringP("include", "p", defaults.IncludePattern, "File pattern to include (e.g. '*.md')")
	watchCmd.Flags().StringP("verbosity", "v", defaults.Verbosity, "Verbosity level (quiet, normal, verbose)")
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")

	rootCmd.AddCommand(watchCmd)
}

// getWatchConfigFromFlags extracts watch configuration from command flags
func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if tier, err := cmd.Flags().GetString("tier"); err == nil {
		config.Tier = tier
	}
	if ignoreDirs, err := cmd.Flags().GetStringSlice("ignore"); err == nil {
		config.IgnoreDirs = ignoreDirs
	}
	if includePattern, err := cmd.Flags().GetString("include"); err == nil {
		config.IncludePattern = includePattern
	}
	if verbosity, err := cmd.Flags().GetString("verbosity"); err == nil {
		config.Verbosity = verbosity
	}
	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}

	return config
}

func runWatchMode(ctx context.Context, evaluator *scoring.Evaluator, root string, config *WatchConfig) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		logger.G(ctx).WithError(err).Fatal("Failed to create file watcher")
	}
	defer watcher.Close()

	events := make(chan FileEvent)
	debouncedEvents := make(chan FileEvent)

	go debounceFileEvents(ctx, events, debouncedEvents, time.Duration(config.DebounceTime)*time.Millisecond)

	// Process events
	go func() {
		for {
			select {
			case event, ok := <-debouncedEvents:
				if !ok {
					return
				}
				if config.Verbosity != "quiet" {
					presenter.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
					logger.G(ctx).WithFields(map[string]interface{}{
						"file":      event.Path,
						"operation": event.Op.String(),
						"timestamp": event.Time,
					}).Debug("File change detected")
				}
				processDocumentChange(ctx, evaluator, event.Path)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Watch for events
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				skipEvent := false
				for _, ignoreDir := range config.IgnoreDirs {
					if strings.Contains(event.Name, ignoreDir+string(os.PathSeparator)) {
						skipEvent = true
						break
					}
				}
				if skipEvent {
					continue
				}

				// Only process write and create events
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					matched, err := filepath.Match(config.IncludePattern, filepath.Base(event.Name))
					if err != nil || !matched {
						if config.Verbosity == "verbose" && err != nil {
							logger.G(ctx).WithError(err).WithField("pattern", config.IncludePattern).Debug("Pattern matching error")
						}
						continue
					}
					events <- FileEvent{
						Path: event.Name,
						Op:   event.Op,
						Time: time.Now(),
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				presenter.Error(err, "File watcher error")
				logger.G(ctx).WithError(err).Error("Error watching files")
			case <-ctx.Done():
				return
			}
		}
	}()

	// Add the root directory and subdirectories to the watcher
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			for _, ignoreDir := range config.IgnoreDirs {
				if strings.Contains(path, ignoreDir+string(os.PathSeparator)) || filepath.Base(path) == ignoreDir {
					if config.Verbosity == "verbose" {
						logger.G(ctx).WithField("directory", path).Debug("Skipping ignored directory")
					}
					return filepath.SkipDir
				}
			}
			logger.G(ctx).WithField("directory", path).Debug("Adding directory to watcher")
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		presenter.Error(err, "Failed to watch directories")
		logger.G(ctx).WithError(err).Fatal("Failed to watch directories")
	}

	presenter.Info(fmt.Sprintf("Watching %s for agent document changes... Press Ctrl+C to stop", root))
	logger.G(ctx).WithField("root", root).Info("File watcher initialized")

	<-ctx.Done()
}

// Debounce file events to prevent processing multiple rapid changes to the same file
func debounceFileEvents(ctx context.Context, input <-chan FileEvent, output chan<- FileEvent, delay time.Duration) {
	var pending = make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
				delete(pending, event.Path)
			}

			eventCopy := event
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
					delete(pending, eventCopy.Path)
				case <-ctx.Done():
					delete(pending, eventCopy.Path)
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}

// processDocumentChange rescores a changed document and prints the report.
// Documents that fail to parse mid-edit are reported and skipped.
func processDocumentChange(ctx context.Context, evaluator *scoring.Evaluator, path string) {
	qualityReport, err := evaluator.EvaluateFile(ctx, path)
	if err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to score %s", path))
		logger.G(ctx).WithError(err).WithField("file", path).Debug("Document failed to score")
		return
	}

	presenter.Separator()
	if err := report.NewDocumentOutput(qualityReport, report.FormatNarrative).Render(os.Stdout); err != nil {
		presenter.Error(err, "Failed to render report")
	}
	presenter.Separator()
}
