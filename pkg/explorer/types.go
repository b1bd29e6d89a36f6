// Package explorer provides public types for the Project Explorer analytics core.
// This package is intended to be importable by external projects (charting layers,
// alternative frontends) that consume filtered project data.
package explorer

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Coordinates holds the 3D position of a project in the explorer space.
// A record either has all three coordinates or none (no partial 3D data).
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ProjectRecord represents one row of the project dataset.
type ProjectRecord struct {
	// Title is the project name (never empty in a loaded Dataset)
	Title string `json:"title"`

	// Category is the project's categorical label (e.g., "AI/ML", "Web Dev")
	Category string `json:"category"`

	// Description is free-form text; defaults to empty when absent
	Description string `json:"description"`

	// Coords holds the spatial coordinates, nil when the row carries no 3D data
	Coords *Coordinates `json:"coordinates,omitempty"`

	// LaunchYear is the year the project launched
	LaunchYear int `json:"launchYear"`

	// TeamSize is the number of team members (always >= 0)
	TeamSize int `json:"teamSize"`

	// Funding is the project funding in dollars (always >= 0)
	Funding float64 `json:"funding"`

	// SuccessRate is the project success rate in [0, 1]
	SuccessRate float64 `json:"successRate"`
}

// Fields returns the record as a field map keyed by the canonical column names.
// Coordinate fields are present only when the record carries coordinates, so
// predicate engines that tolerate undefined variables behave correctly on
// records without 3D data.
func (r ProjectRecord) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"title":        r.Title,
		"category":     r.Category,
		"description":  r.Description,
		"launch_year":  r.LaunchYear,
		"team_size":    r.TeamSize,
		"funding":      r.Funding,
		"success_rate": r.SuccessRate,
	}
	if r.Coords != nil {
		fields["x"] = r.Coords.X
		fields["y"] = r.Coords.Y
		fields["z"] = r.Coords.Z
	}
	return fields
}

// IntRange is an inclusive integer range predicate.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies within the range (inclusive).
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// FloatRange is an inclusive floating-point range predicate.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range (inclusive).
func (r FloatRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterState holds the current user-selected filter criteria.
// The zero value is fully permissive: every record matches.
//
// A record matches a FilterState iff it satisfies every active predicate
// (logical AND across fields). Within Categories, membership is logical OR.
// Nil ranges mean "unrestricted" rather than sentinel min/max values.
type FilterState struct {
	// Categories restricts matches to the listed category values.
	// An empty set means no restriction.
	Categories []string `json:"categories,omitempty"`

	// LaunchYear restricts matches to an inclusive launch-year range.
	LaunchYear *IntRange `json:"launchYear,omitempty"`

	// TeamSize restricts matches to an inclusive team-size range.
	TeamSize *IntRange `json:"teamSize,omitempty"`

	// Funding restricts matches to an inclusive funding range.
	Funding *FloatRange `json:"funding,omitempty"`

	// SuccessRate restricts matches to an inclusive success-rate range.
	SuccessRate *FloatRange `json:"successRate,omitempty"`

	// Search restricts matches to records whose title or description
	// contains the term (case-insensitive).
	Search string `json:"search,omitempty"`

	// Expression is an optional predicate expression evaluated against the
	// record's field map (expr syntax, e.g. "funding > 50000 && team_size < 10").
	Expression string `json:"expression,omitempty"`

	// Script is an optional JavaScript source defining match(record) bool.
	// Script predicates are accepted from local configuration only, never
	// from remote callers.
	Script string `json:"script,omitempty"`
}

// IsZero reports whether the FilterState is fully permissive.
func (f FilterState) IsZero() bool {
	return len(f.Categories) == 0 &&
		f.LaunchYear == nil &&
		f.TeamSize == nil &&
		f.Funding == nil &&
		f.SuccessRate == nil &&
		f.Search == "" &&
		f.Expression == "" &&
		f.Script == ""
}

// Validate checks the FilterState for structurally invalid predicates.
// Expression and script compilation are checked by the filter engine, not here.
func (f FilterState) Validate() error {
	if f.LaunchYear != nil && f.LaunchYear.Min > f.LaunchYear.Max {
		return fmt.Errorf("launch year range is inverted: %d > %d", f.LaunchYear.Min, f.LaunchYear.Max)
	}
	if f.TeamSize != nil && f.TeamSize.Min > f.TeamSize.Max {
		return fmt.Errorf("team size range is inverted: %d > %d", f.TeamSize.Min, f.TeamSize.Max)
	}
	if f.Funding != nil && f.Funding.Min > f.Funding.Max {
		return fmt.Errorf("funding range is inverted: %v > %v", f.Funding.Min, f.Funding.Max)
	}
	if f.SuccessRate != nil && f.SuccessRate.Min > f.SuccessRate.Max {
		return fmt.Errorf("success rate range is inverted: %v > %v", f.SuccessRate.Min, f.SuccessRate.Max)
	}
	return nil
}

// Key returns a canonical string representation of the FilterState, suitable
// for cache keying. States that select the same records produce the same key
// regardless of category ordering, and distinct states always produce
// distinct keys: free-text components are length-prefixed so a value cannot
// forge another field's separator.
func (f FilterState) Key() string {
	var sb strings.Builder

	if len(f.Categories) > 0 {
		cats := make([]string, len(f.Categories))
		copy(cats, f.Categories)
		sort.Strings(cats)
		sb.WriteString("cat=")
		for i, c := range cats {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeLenPrefixed(&sb, c)
		}
	}
	writeIntRange(&sb, "year", f.LaunchYear)
	writeIntRange(&sb, "team", f.TeamSize)
	writeFloatRange(&sb, "funding", f.Funding)
	writeFloatRange(&sb, "success", f.SuccessRate)
	if f.Search != "" {
		sb.WriteString("|q=")
		writeLenPrefixed(&sb, strings.ToLower(f.Search))
	}
	if f.Expression != "" {
		sb.WriteString("|expr=")
		writeLenPrefixed(&sb, f.Expression)
	}
	if f.Script != "" {
		// Scripts can be large; key on a digest instead of the source.
		h := fnv.New64a()
		h.Write([]byte(f.Script))
		sb.WriteString("|script=")
		sb.WriteString(strconv.FormatUint(h.Sum64(), 16))
	}

	if sb.Len() == 0 {
		return "unfiltered"
	}
	return strings.TrimPrefix(sb.String(), "|")
}

// writeLenPrefixed writes s as "<len>:<s>" so the component's end is
// unambiguous no matter what characters s contains.
func writeLenPrefixed(sb *strings.Builder, s string) {
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(':')
	sb.WriteString(s)
}

func writeIntRange(sb *strings.Builder, name string, r *IntRange) {
	if r == nil {
		return
	}
	fmt.Fprintf(sb, "|%s=%d..%d", name, r.Min, r.Max)
}

func writeFloatRange(sb *strings.Builder, name string, r *FloatRange) {
	if r == nil {
		return
	}
	fmt.Fprintf(sb, "|%s=%s..%s", name,
		strconv.FormatFloat(r.Min, 'g', -1, 64),
		strconv.FormatFloat(r.Max, 'g', -1, 64))
}

// RowDiagnostic describes a single row that was dropped or defaulted during load.
type RowDiagnostic struct {
	// Row is the 1-based data row number (excluding the header row)
	Row int `json:"row"`

	// Field is the column involved, when the condition is field-specific
	Field string `json:"field,omitempty"`

	// Reason is a human-readable description of the condition
	Reason string `json:"reason"`

	// Dropped indicates whether the row was excluded (true) or repaired
	// with a default value (false)
	Dropped bool `json:"dropped"`
}

// LoadDiagnostics summarizes row-level conditions encountered while loading
// a Dataset. Row-level issues never abort a load; they are accumulated here.
type LoadDiagnostics struct {
	// Source identifies where the data came from (file path or "sample")
	Source string `json:"source"`

	// RowsRead is the number of data rows read from the source
	RowsRead int `json:"rowsRead"`

	// RowsLoaded is the number of rows accepted into the Dataset
	RowsLoaded int `json:"rowsLoaded"`

	// RowsDropped is the number of rows excluded for invariant violations
	RowsDropped int `json:"rowsDropped"`

	// RowsDefaulted is the number of rows where an optional field was defaulted
	RowsDefaulted int `json:"rowsDefaulted"`

	// Rows holds per-row details, capped to avoid unbounded growth
	Rows []RowDiagnostic `json:"rows,omitempty"`
}

// Clean reports whether the load completed without drops or defaults.
func (d LoadDiagnostics) Clean() bool {
	return d.RowsDropped == 0 && d.RowsDefaulted == 0
}
