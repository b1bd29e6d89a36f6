// Package main provides the CLI entry point for the Project Explorer
// analytics core.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecanbaykurt/Project-Explorer/internal/cli"
	"github.com/ecanbaykurt/Project-Explorer/internal/config"
	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/internal/export"
	"github.com/ecanbaykurt/Project-Explorer/internal/filter"
	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
	"github.com/ecanbaykurt/Project-Explorer/internal/server"
	"github.com/ecanbaykurt/Project-Explorer/internal/stats"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	logFormat string

	// Data selection flags shared by export/stats/serve
	dataPath   string
	configPath string

	// Filter flags shared by export/stats
	filterCategories []string
	filterYearMin    int
	filterYearMax    int
	filterTeamMin    int
	filterTeamMax    int
	filterFundingMin float64
	filterFundingMax float64
	filterSuccessMin float64
	filterSuccessMax float64
	filterSearch     string
	filterExpression string
	filterScriptFile string

	// Export command flags
	exportOut string

	// Sample command flags
	sampleSeed  int64
	sampleCount int

	// Serve command flags
	serveAddress string

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Project Explorer - Project analytics data core",
	Long: `Project Explorer loads project records from CSV, filters them with
composable predicates, and produces aggregated statistics and CSV exports.

When no data file is given (or the file cannot be read), a deterministic
sample dataset is generated instead.

Examples:
  # Validate a dashboard configuration file
  analytics validate dashboard.json

  # Print statistics for a filtered view
  analytics stats --data projects.csv --category AI/ML --year-min 2020

  # Export a filtered view to CSV
  analytics export --data projects.csv --search sensor -o filtered.csv

  # Serve the dashboard API
  analytics serve dashboard.yaml`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Configure logger level and format based on flags
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if quiet {
			level = slog.LevelError
		}

		format := logger.FormatJSON
		switch logFormat {
		case "json", "":
		case "human":
			format = logger.FormatHuman
		default:
			fmt.Fprintf(os.Stderr, "✗ Unknown log format: %q (expected json or human)\n", logFormat)
			os.Exit(ExitValidationError)
		}
		logger.SetLevelAndFormat(level, format)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a dashboard configuration file",
	Long: `Validate a dashboard configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  analytics validate dashboard.json
  analytics validate --verbose dashboard.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a filtered view to CSV",
	Long: `Load the dataset, apply the filter flags, and write the matching
records to a CSV file in the canonical column order.

Exit codes:
  0 - Export completed
  1 - Invalid data or filter
  3 - Export failed

Examples:
  analytics export --data projects.csv -o all.csv
  analytics export --data projects.csv --category AI/ML --funding-min 100000 -o filtered.csv`,
	Run: runExport,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for a filtered view",
	Long: `Load the dataset, apply the filter flags, and print summary metrics
and per-category and per-year breakdowns for the matching records.

Examples:
  analytics stats --data projects.csv
  analytics stats --data projects.csv --year-min 2020 --verbose`,
	Run: runStats,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a deterministic sample dataset",
	Long: `Generate the deterministic sample dataset and write it as CSV.

The same seed always produces the same records, so generated files are
reproducible across runs and machines.

Examples:
  analytics sample -o sample.csv
  analytics sample --seed 7 --count 500 -o sample.csv`,
	Run: runSample,
}

var serveCmd = &cobra.Command{
	Use:   "serve [config-file]",
	Short: "Serve the dashboard API over HTTP",
	Long: `Load the dataset and serve it over HTTP.

With a configuration file, the data path, listen address, and default
filter come from the configuration. Flags override the configured values.

Endpoints:
  GET  /api/projects     Filtered project records
  GET  /api/stats        Aggregated statistics for a filtered view
  GET  /api/export       Filtered view as a CSV download
  GET  /api/diagnostics  Diagnostics from the last load
  POST /api/reload       Reload the dataset
  GET  /healthz          Liveness check

Examples:
  analytics serve
  analytics serve dashboard.yaml
  analytics serve --data projects.csv --address localhost:9000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log output format: json or human")

	for _, cmd := range []*cobra.Command{exportCmd, statsCmd} {
		cmd.Flags().StringVar(&dataPath, "data", "", "CSV data file (sample dataset when empty)")
		cmd.Flags().StringVar(&configPath, "config", "", "Dashboard configuration file")
		registerFilterFlags(cmd)
	}

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "export.csv", "Output CSV file")

	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", dataset.DefaultSampleSeed, "Generator seed")
	sampleCmd.Flags().IntVar(&sampleCount, "count", dataset.DefaultSampleSize, "Number of records")
	sampleCmd.Flags().StringVarP(&exportOut, "out", "o", "sample.csv", "Output CSV file")

	serveCmd.Flags().StringVar(&dataPath, "data", "", "CSV data file (overrides configuration)")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides configuration)")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func registerFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&filterCategories, "category", nil, "Keep records in this category (repeatable)")
	cmd.Flags().IntVar(&filterYearMin, "year-min", 0, "Minimum launch year (inclusive)")
	cmd.Flags().IntVar(&filterYearMax, "year-max", 0, "Maximum launch year (inclusive)")
	cmd.Flags().IntVar(&filterTeamMin, "team-min", 0, "Minimum team size (inclusive)")
	cmd.Flags().IntVar(&filterTeamMax, "team-max", 0, "Maximum team size (inclusive)")
	cmd.Flags().Float64Var(&filterFundingMin, "funding-min", 0, "Minimum funding (inclusive)")
	cmd.Flags().Float64Var(&filterFundingMax, "funding-max", 0, "Maximum funding (inclusive)")
	cmd.Flags().Float64Var(&filterSuccessMin, "success-min", 0, "Minimum success rate (inclusive)")
	cmd.Flags().Float64Var(&filterSuccessMax, "success-max", 0, "Maximum success rate (inclusive)")
	cmd.Flags().StringVar(&filterSearch, "search", "", "Case-insensitive title/description substring")
	cmd.Flags().StringVar(&filterExpression, "expr", "", "Expression predicate over record fields")
	cmd.Flags().StringVar(&filterScriptFile, "script-file", "", "JavaScript file defining match(record)")
}

// filterStateFromFlags assembles a FilterState from the filter flags.
// Range bounds are only set when the flag was given, so a zero value never
// restricts the view by accident.
func filterStateFromFlags(cmd *cobra.Command) (explorer.FilterState, error) {
	state := explorer.FilterState{
		Categories: filterCategories,
		Search:     filterSearch,
		Expression: filterExpression,
	}

	intRange := func(minName, maxName string, minVal, maxVal int) *explorer.IntRange {
		if !cmd.Flags().Changed(minName) && !cmd.Flags().Changed(maxName) {
			return nil
		}
		r := &explorer.IntRange{Min: minVal, Max: maxVal}
		if !cmd.Flags().Changed(minName) {
			r.Min = math.MinInt
		}
		if !cmd.Flags().Changed(maxName) {
			r.Max = math.MaxInt
		}
		return r
	}
	floatRange := func(minName, maxName string, minVal, maxVal float64) *explorer.FloatRange {
		if !cmd.Flags().Changed(minName) && !cmd.Flags().Changed(maxName) {
			return nil
		}
		r := &explorer.FloatRange{Min: minVal, Max: maxVal}
		if !cmd.Flags().Changed(minName) {
			r.Min = math.Inf(-1)
		}
		if !cmd.Flags().Changed(maxName) {
			r.Max = math.Inf(1)
		}
		return r
	}

	state.LaunchYear = intRange("year-min", "year-max", filterYearMin, filterYearMax)
	state.TeamSize = intRange("team-min", "team-max", filterTeamMin, filterTeamMax)
	state.Funding = floatRange("funding-min", "funding-max", filterFundingMin, filterFundingMax)
	state.SuccessRate = floatRange("success-min", "success-max", filterSuccessMin, filterSuccessMax)

	if filterScriptFile != "" {
		source, err := os.ReadFile(filterScriptFile)
		if err != nil {
			return explorer.FilterState{}, fmt.Errorf("reading script file: %w", err)
		}
		state.Script = string(source)
	}

	if err := state.Validate(); err != nil {
		return explorer.FilterState{}, err
	}
	return state, nil
}

func runValidate(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Validating configuration: %s\n", configPath)
	}

	// Parse and validate configuration
	result := config.ParseConfig(configPath)

	// Handle parse errors
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}

	// Handle validation errors
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	// Success
	if !quiet {
		fmt.Printf("✓ Configuration is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintConfigSummary(result.Data)
		}
	}

	os.Exit(ExitSuccess)
}

func runExport(cmd *cobra.Command, _ []string) {
	ds, state := loadForView(cmd)

	view, err := filter.Apply(ds, state)
	if err != nil {
		cli.PrintRuntimeError(err)
		os.Exit(ExitValidationError)
	}

	rows, err := export.WriteFile(exportOut, view)
	if err != nil {
		cli.PrintRuntimeError(err)
		os.Exit(ExitRuntimeError)
	}

	opts := cli.OutputOptions{Verbose: verbose, Quiet: quiet}
	info, statErr := os.Stat(exportOut)
	var size int64
	if statErr == nil {
		size = info.Size()
	}
	cli.PrintExportResult(exportOut, rows, size, opts)
	if !quiet {
		cli.PrintFilterSummary(state, len(view), ds.Len())
	}
	os.Exit(ExitSuccess)
}

func runStats(cmd *cobra.Command, _ []string) {
	ds, state := loadForView(cmd)

	view, err := filter.Apply(ds, state)
	if err != nil {
		cli.PrintRuntimeError(err)
		os.Exit(ExitValidationError)
	}

	opts := cli.OutputOptions{Verbose: verbose, Quiet: quiet}
	if !quiet {
		fmt.Printf("✓ Statistics for %s\n", ds.Source)
		cli.PrintFilterSummary(state, len(view), ds.Len())
	}
	cli.PrintStatsReport(stats.Describe(view), opts)
	os.Exit(ExitSuccess)
}

func runSample(_ *cobra.Command, _ []string) {
	ds := dataset.GenerateSample(sampleSeed, sampleCount)

	rows, err := export.WriteFile(exportOut, ds.Records)
	if err != nil {
		cli.PrintRuntimeError(err)
		os.Exit(ExitRuntimeError)
	}

	var size int64
	if info, statErr := os.Stat(exportOut); statErr == nil {
		size = info.Size()
	}
	cli.PrintExportResult(exportOut, rows, size, cli.OutputOptions{Verbose: verbose, Quiet: quiet})
	os.Exit(ExitSuccess)
}

func runServe(_ *cobra.Command, args []string) {
	cfg := &config.DashboardConfig{
		Title: "Project Explorer",
		Data: config.DataConfig{
			Sample: config.SampleConfig{
				Seed:  dataset.DefaultSampleSeed,
				Count: dataset.DefaultSampleSize,
			},
		},
		Server: config.ServerConfig{Address: config.DefaultServerAddress},
	}

	if len(args) == 1 {
		cfg = loadConfig(args[0])
	}

	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	ds, err := loadDataset(cfg)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			cli.PrintRuntimeError(loadErr)
			os.Exit(ExitValidationError)
		}
		cli.PrintRuntimeError(err)
		os.Exit(ExitRuntimeError)
	}

	if !quiet {
		cli.PrintLoadSummary(ds.Diagnostics, cli.OutputOptions{Verbose: verbose, Quiet: quiet})
		fmt.Printf("Serving on http://%s\n", cfg.Server.Address)
	}

	srv := server.New(cfg, dataset.NewStore(ds))
	if err := srv.Start(context.Background()); err != nil {
		cli.PrintRuntimeError(err)
		os.Exit(ExitRuntimeError)
	}
	os.Exit(ExitSuccess)
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// loadForView loads the dataset for export/stats and resolves the filter
// flags. With --config, the configured data path and default filter apply
// unless overridden by flags. Exits on failure.
func loadForView(cmd *cobra.Command) (*dataset.Dataset, explorer.FilterState) {
	state, err := filterStateFromFlags(cmd)
	if err != nil {
		cli.PrintRuntimeError(err)
		os.Exit(ExitValidationError)
	}

	path := dataPath
	if configPath != "" {
		cfg := loadConfig(configPath)
		if path == "" {
			path = cfg.Data.Path
		}
		if state.IsZero() {
			state = cfg.Defaults.Filter
		}
	}

	ds, err := dataset.Load(path)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			cli.PrintRuntimeError(loadErr)
			os.Exit(ExitValidationError)
		}
		cli.PrintRuntimeError(err)
		os.Exit(ExitRuntimeError)
	}

	if !quiet {
		cli.PrintLoadSummary(ds.Diagnostics, cli.OutputOptions{Verbose: verbose, Quiet: quiet})
	}
	return ds, state
}

// loadConfig parses, validates, and converts a configuration file.
// Exits with the appropriate code on failure.
func loadConfig(path string) *config.DashboardConfig {
	result := config.ParseConfig(path)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	cfg, err := config.ConvertToDashboard(result.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to convert configuration: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	// A configured script file is read at startup; scripts are never
	// accepted over HTTP.
	if cfg.Defaults.ScriptFile != "" {
		source, readErr := os.ReadFile(cfg.Defaults.ScriptFile)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "✗ Failed to read script file: %v\n", readErr)
			os.Exit(ExitRuntimeError)
		}
		cfg.Defaults.Filter.Script = string(source)
	}

	return cfg
}

// loadDataset resolves the configured data source: a CSV path when set,
// otherwise the configured sample generator.
func loadDataset(cfg *config.DashboardConfig) (*dataset.Dataset, error) {
	if cfg.Data.Path == "" {
		seed := cfg.Data.Sample.Seed
		count := cfg.Data.Sample.Count
		if count <= 0 {
			count = dataset.DefaultSampleSize
		}
		return dataset.GenerateSample(seed, count), nil
	}
	return dataset.Load(cfg.Data.Path)
}
