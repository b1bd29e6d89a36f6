// Package dataset implements the record store: loading project records from
// CSV, generating deterministic sample data when no source is available, and
// holding the current immutable Dataset behind an atomically replaceable
// reference.
package dataset

import (
	"sync/atomic"

	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// Columns is the canonical column order shared by the CSV input and export
// schema. Chart bindings and the export producer both rely on this order
// staying stable.
var Columns = []string{
	"title", "category", "description",
	"x", "y", "z",
	"launch_year", "team_size", "funding", "success_rate",
}

// SourceSample is the Source value of a generated dataset.
const SourceSample = "sample"

// generationCounter issues a process-unique generation for every Dataset.
// The generation is the cache-key component that distinguishes reloads.
var generationCounter atomic.Uint64

// Dataset is an immutable ordered collection of project records together
// with the diagnostics produced while loading it. A reload always builds a
// new Dataset; existing ones are never mutated.
type Dataset struct {
	// Records is the ordered record sequence. Treat as read-only.
	Records []explorer.ProjectRecord

	// Diagnostics summarize row-level repairs and drops from the load.
	Diagnostics explorer.LoadDiagnostics

	// Generation is a process-unique identity for this load.
	Generation uint64

	// Source is the file path the data came from, or SourceSample.
	Source string
}

func newDataset(records []explorer.ProjectRecord, diags explorer.LoadDiagnostics, source string) *Dataset {
	diags.Source = source
	return &Dataset{
		Records:     records,
		Diagnostics: diags,
		Generation:  generationCounter.Add(1),
		Source:      source,
	}
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Store holds the process's current Dataset. Replacement is atomic: concurrent
// readers either see the previous Dataset or the new one, never a partial
// load. This is the only synchronization the read path needs because every
// Dataset is immutable.
type Store struct {
	current atomic.Pointer[Dataset]
}

// NewStore creates a Store holding the given initial Dataset.
func NewStore(ds *Dataset) *Store {
	s := &Store{}
	s.current.Store(ds)
	return s
}

// Current returns the active Dataset.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

// Replace swaps in a new Dataset wholesale.
func (s *Store) Replace(ds *Dataset) {
	s.current.Store(ds)
}
