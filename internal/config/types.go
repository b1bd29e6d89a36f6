// Package config provides functionality for parsing and validating
// dashboard configuration files (JSON/YAML).
package config

import (
	"fmt"
	"strings"

	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// DefaultServerAddress is where the dashboard host listens when the
// configuration does not say otherwise. External consumers (the 3D explorer
// frontend) discover the dashboard at this URL.
const DefaultServerAddress = "localhost:8501"

// DashboardConfig is the typed dashboard configuration. Parsed configuration
// data is schema-validated first, then converted into this structure so the
// rest of the program never does dynamic map lookups.
type DashboardConfig struct {
	// SchemaVersion is the configuration schema version
	SchemaVersion string

	// Title is the dashboard title
	Title string

	// Data configures the dataset source
	Data DataConfig

	// Server configures the HTTP host
	Server ServerConfig

	// Defaults is the filter state applied when a session starts
	Defaults DefaultsConfig

	// Export configures CSV export destinations
	Export ExportConfig
}

// DataConfig configures where the dataset comes from.
type DataConfig struct {
	// Path is the CSV file to load; empty means "generate the sample"
	Path string

	// Sample configures the deterministic sample generator used when Path
	// is empty or unreadable
	Sample SampleConfig
}

// SampleConfig configures the deterministic sample generator.
type SampleConfig struct {
	Seed  int64
	Count int
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	// Address is the listen address (host:port)
	Address string

	// ReadTimeoutSeconds bounds request reads (0 = default)
	ReadTimeoutSeconds int

	// WriteTimeoutSeconds bounds response writes (0 = default)
	WriteTimeoutSeconds int
}

// DefaultsConfig is the session-start filter state.
type DefaultsConfig struct {
	// Filter holds the default predicates
	Filter explorer.FilterState

	// ScriptFile optionally names a JavaScript file whose match(record)
	// function is loaded into Filter.Script by the host
	ScriptFile string
}

// ExportConfig configures export output.
type ExportConfig struct {
	// Directory is where CLI exports land when no explicit path is given
	Directory string
}

// ParseResult contains the result of parsing a configuration file.
type ParseResult struct {
	// Data contains the parsed configuration as a map
	Data map[string]interface{}
	// Errors contains any parsing errors encountered
	Errors []ParseError
	// FilePath is the path to the parsed file (empty if parsed from string)
	FilePath string
	// Format indicates the detected format (json, yaml)
	Format string
}

// IsValid returns true if no parsing errors occurred.
func (r *ParseResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ParseError represents a parsing error with location information.
type ParseError struct {
	// Path is the file path where the error occurred
	Path string
	// Line is the line number (1-based, 0 if unknown)
	Line int
	// Column is the column number (1-based, 0 if unknown)
	Column int
	// Message is the error message
	Message string
	// Type categorizes the error (syntax, io, format)
	Type string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d", e.Line))
		if e.Column > 0 {
			sb.WriteString(fmt.Sprintf(", column %d", e.Column))
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ValidationResult contains the result of validating a configuration.
type ValidationResult struct {
	// Valid indicates whether the configuration is valid
	Valid bool
	// Errors contains validation errors
	Errors []ValidationError
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	// Path is the JSON path where the error occurred (e.g., "/dashboard/data/path")
	Path string
	// Type is the error type (required, type, format, enum, etc.)
	Type string
	// Message is the error message
	Message string
	// Expected describes the expected value or type, when available
	Expected string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Result contains the combined result of parsing and validation.
type Result struct {
	// Data contains the parsed and validated configuration
	Data map[string]interface{}
	// ParseErrors contains parsing errors
	ParseErrors []ParseError
	// ValidationErrors contains validation errors
	ValidationErrors []ValidationError
	// FilePath is the path to the configuration file
	FilePath string
	// Format is the detected format (json, yaml)
	Format string
}

// IsValid returns true if no errors occurred.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors returns all errors (parsing and validation) as a single slice.
func (r *Result) AllErrors() []error {
	errors := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		errors = append(errors, e)
	}
	for _, e := range r.ValidationErrors {
		errors = append(errors, e)
	}
	return errors
}

// FormatErrorType constants for categorizing parse errors.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)
