package cli

import (
	"fmt"
	"os"

	"github.com/ecanbaykurt/Project-Explorer/internal/config"
)

// compactMessageLimit caps validation messages in non-verbose output.
const compactMessageLimit = 80

// PrintParseErrors lists configuration parse errors on stderr, one per line
// with a path:line:column prefix when the parser reported a location.
func PrintParseErrors(errors []config.ParseError, verbose bool) {
	fmt.Fprintln(os.Stderr, "✗ Parse errors:")
	for _, err := range errors {
		if loc := parseErrorLocation(err); loc != "" {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", loc, err.Message)
		} else {
			fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
		}
		if verbose && err.Type != "" {
			fmt.Fprintf(os.Stderr, "    Type: %s\n", err.Type)
		}
	}
}

func parseErrorLocation(err config.ParseError) string {
	if err.Path == "" {
		return ""
	}
	loc := err.Path
	if err.Line > 0 {
		loc += fmt.Sprintf(":%d", err.Line)
		if err.Column > 0 {
			loc += fmt.Sprintf(":%d", err.Column)
		}
	}
	return loc
}

// PrintValidationErrors lists schema validation errors on stderr. Compact
// output truncates long messages; verbose output adds the schema type and
// expected value for each failing path.
func PrintValidationErrors(errors []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(os.Stderr, "✗ Validation errors:")
	for _, err := range errors {
		path := err.Path
		if path == "" {
			path = "/"
		}
		if verbose {
			printValidationDetail(path, err)
		} else {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", path, truncate(err.Message, compactMessageLimit))
		}
	}
	if !quiet {
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Hint: Use --verbose for detailed error information")
	}
}

func printValidationDetail(path string, err config.ValidationError) {
	fmt.Fprintf(os.Stderr, "  %s:\n", path)
	fmt.Fprintf(os.Stderr, "    Message: %s\n", err.Message)
	if err.Type != "" {
		fmt.Fprintf(os.Stderr, "    Type: %s\n", err.Type)
	}
	if err.Expected != "" {
		fmt.Fprintf(os.Stderr, "    Expected: %s\n", err.Expected)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
