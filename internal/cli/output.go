// Package cli renders command output for the analytics tool: load summaries,
// statistics reports, and configuration error listings.
package cli

import (
	"fmt"
	"os"

	"github.com/ecanbaykurt/Project-Explorer/internal/stats"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
}

// PrintLoadSummary displays the outcome of a dataset load.
func PrintLoadSummary(diag explorer.LoadDiagnostics, opts OutputOptions) {
	if opts.Quiet {
		return
	}

	fmt.Printf("✓ Loaded %d rows from %s\n", diag.RowsLoaded, diag.Source)
	if diag.RowsDropped > 0 {
		fmt.Printf("  Rows dropped: %d\n", diag.RowsDropped)
	}
	if diag.RowsDefaulted > 0 {
		fmt.Printf("  Rows defaulted: %d\n", diag.RowsDefaulted)
	}

	if opts.Verbose && len(diag.Rows) > 0 {
		printRowDiagnostics(diag.Rows)
	} else if !diag.Clean() {
		fmt.Println("  Hint: Use --verbose for per-row details")
	}
}

// printRowDiagnostics prints per-row load details, truncated past a cap.
func printRowDiagnostics(rows []explorer.RowDiagnostic) {
	const maxRows = 20

	fmt.Println("  Row details:")
	for i, row := range rows {
		if i >= maxRows {
			fmt.Printf("    ... (%d more rows)\n", len(rows)-maxRows)
			return
		}
		action := "defaulted"
		if row.Dropped {
			action = "dropped"
		}
		if row.Field != "" {
			fmt.Printf("    row %d (%s, %s): %s\n", row.Row, row.Field, action, row.Reason)
		} else {
			fmt.Printf("    row %d (%s): %s\n", row.Row, action, row.Reason)
		}
	}
}

// PrintStatsReport displays the aggregated metrics for a view.
func PrintStatsReport(report stats.Report, opts OutputOptions) {
	if opts.Quiet {
		return
	}

	fmt.Printf("  Projects: %d\n", report.Summary.TotalProjects)
	fmt.Printf("  Categories: %d\n", report.Summary.CategoryCount)
	if report.Summary.TotalProjects > 0 {
		fmt.Printf("  Average launch year: %.1f\n", report.Summary.AvgLaunchYear)
		fmt.Printf("  Total funding: %.2f\n", report.Summary.TotalFunding)
	}

	if len(report.ByCategory) > 0 {
		fmt.Println("  By category:")
		for _, c := range report.ByCategory {
			fmt.Printf("    %s: %d\n", c.Category, c.Count)
		}
	}

	if len(report.ByYear) > 0 {
		fmt.Println("  By launch year:")
		for _, y := range report.ByYear {
			fmt.Printf("    %d: %d\n", y.Year, y.Count)
		}
	}

	if opts.Verbose && len(report.FundingHistogram) > 0 {
		printHistogram(report.FundingHistogram)
	}
}

// printHistogram prints the funding distribution, skipping empty bins.
func printHistogram(bins []stats.HistogramBin) {
	fmt.Println("  Funding distribution:")
	for _, bin := range bins {
		if bin.Count == 0 {
			continue
		}
		fmt.Printf("    [%.0f, %.0f): %d\n", bin.Low, bin.High, bin.Count)
	}
}

// PrintExportResult displays the outcome of a CSV export.
func PrintExportResult(path string, rows int, size int64, opts OutputOptions) {
	if opts.Quiet {
		return
	}
	fmt.Printf("✓ Exported %d rows to %s\n", rows, path)
	if opts.Verbose {
		fmt.Printf("  Size: %d bytes\n", size)
	}
}

// PrintFilterSummary displays the active filter, if any.
func PrintFilterSummary(state explorer.FilterState, matched, total int) {
	if state.IsZero() {
		return
	}
	fmt.Printf("  Filter matched %d of %d rows\n", matched, total)
}

// PrintConfigSummary prints dashboard title and schema version if available.
func PrintConfigSummary(data map[string]interface{}) {
	if data == nil {
		return
	}

	if version, ok := data["schemaVersion"].(string); ok {
		fmt.Printf("  Schema version: %s\n", version)
	}

	dashboard, ok := data["dashboard"].(map[string]interface{})
	if !ok {
		return
	}
	if title, ok := dashboard["title"].(string); ok {
		fmt.Printf("  Dashboard: %s\n", title)
	}
}

// PrintRuntimeError prints a fatal runtime error to stderr.
func PrintRuntimeError(err error) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", err)
}
