package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// maxRowDiagnostics caps the per-row detail list; counts are always exact.
const maxRowDiagnostics = 100

// LoadError reports a structural problem with a data source: the file exists
// and is readable, but the header is missing required columns (or there is no
// header at all). A LoadError is fatal to that load attempt only; a previously
// loaded Dataset stays active.
type LoadError struct {
	// Path is the source file path
	Path string

	// MissingColumns lists required columns absent from the header
	MissingColumns []string

	// Err is the underlying error, when the failure is not column-related
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.MissingColumns, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: malformed data source", e.Path)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load loads a Dataset from the CSV file at path.
//
// An empty path, or a path that cannot be opened, falls back to the
// deterministic sample dataset so the dashboard always has data to render.
// A file that opens but lacks required columns returns a *LoadError instead:
// that is a data-quality problem the user must see, not silently paper over.
//
// Row-level problems never fail the load; they are repaired or dropped and
// accumulated into the Dataset's diagnostics.
func Load(path string) (*Dataset, error) {
	if path == "" {
		logger.Info("no data source configured, generating sample dataset",
			"seed", DefaultSampleSeed, "count", DefaultSampleSize)
		return GenerateSample(DefaultSampleSeed, DefaultSampleSize), nil
	}

	logger.LogLoadStart(path)
	f, err := os.Open(path)
	if err != nil {
		logger.LogSampleFallback(path, err.Error(), DefaultSampleSeed, DefaultSampleSize)
		return GenerateSample(DefaultSampleSeed, DefaultSampleSize), nil
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warn("failed to close data source", "path", path, "error", closeErr.Error())
		}
	}()

	start := time.Now()
	ds, err := Parse(f, path)
	if err != nil {
		return nil, err
	}
	logger.LogLoadEnd(path, ds.Diagnostics.RowsLoaded, ds.Diagnostics.RowsDropped,
		ds.Diagnostics.RowsDefaulted, time.Since(start))
	if !ds.Diagnostics.Clean() {
		log := logger.WithSource(path)
		for _, d := range ds.Diagnostics.Rows {
			log.Debug("row diagnostic",
				"row", d.Row, "field", d.Field, "reason", d.Reason, "dropped", d.Dropped)
		}
	}
	return ds, nil
}

// Parse reads CSV content from r into a Dataset. The source string is used
// for diagnostics and error messages only.
func Parse(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row length is checked per row so short rows drop, not abort

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Path: source, MissingColumns: Columns}
	}
	if err != nil {
		return nil, &LoadError{Path: source, Err: fmt.Errorf("reading header: %w", err)}
	}

	colIdx, missing := indexColumns(header)
	if len(missing) > 0 {
		return nil, &LoadError{Path: source, MissingColumns: missing}
	}

	var (
		records []explorer.ProjectRecord
		diags   explorer.LoadDiagnostics
		rowNum  int
	)

	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		rowNum++
		diags.RowsRead++
		if readErr != nil {
			dropRow(&diags, rowNum, "", fmt.Sprintf("unparsable CSV row: %v", readErr))
			continue
		}

		rec, ok := parseRow(row, colIdx, rowNum, &diags)
		if !ok {
			continue
		}
		records = append(records, rec)
		diags.RowsLoaded++
	}

	return newDataset(records, diags, source), nil
}

// indexColumns maps required column names to their header positions.
// Extra columns are tolerated; missing required ones are reported.
func indexColumns(header []string) (map[string]int, []string) {
	idx := make(map[string]int, len(Columns))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range Columns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return idx, missing
}

// parseRow converts one CSV row into a ProjectRecord, applying the row-level
// repair policy: optional empty fields are defaulted, invariant violations
// drop the row. Every repair and drop is recorded in diags.
func parseRow(row []string, colIdx map[string]int, rowNum int, diags *explorer.LoadDiagnostics) (explorer.ProjectRecord, bool) {
	var rec explorer.ProjectRecord

	field := func(name string) (string, bool) {
		i := colIdx[name]
		if i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	title, ok := field("title")
	if !ok {
		dropRow(diags, rowNum, "", "row has fewer fields than the header")
		return rec, false
	}
	if title == "" {
		dropRow(diags, rowNum, "title", "title is empty")
		return rec, false
	}
	rec.Title = title
	rec.Category, _ = field("category")
	rec.Description, _ = field("description")

	defaulted := false

	// Coordinates are all-or-none; a partial triple is an invariant
	// violation, not something a default can repair.
	xs, _ := field("x")
	ys, _ := field("y")
	zs, _ := field("z")
	present := 0
	for _, s := range []string{xs, ys, zs} {
		if s != "" {
			present++
		}
	}
	switch present {
	case 0:
		rec.Coords = nil
	case 3:
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		z, errZ := strconv.ParseFloat(zs, 64)
		if errX != nil || errY != nil || errZ != nil {
			dropRow(diags, rowNum, "x", "coordinates are not numeric")
			return rec, false
		}
		rec.Coords = &explorer.Coordinates{X: x, Y: y, Z: z}
	default:
		dropRow(diags, rowNum, "x", "partial coordinate triple")
		return rec, false
	}

	yearStr, _ := field("launch_year")
	if yearStr == "" {
		defaultField(diags, rowNum, "launch_year", &defaulted)
	} else {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			dropRow(diags, rowNum, "launch_year", "launch_year is not an integer")
			return rec, false
		}
		rec.LaunchYear = year
	}

	teamStr, _ := field("team_size")
	if teamStr == "" {
		defaultField(diags, rowNum, "team_size", &defaulted)
	} else {
		team, err := strconv.Atoi(teamStr)
		if err != nil {
			dropRow(diags, rowNum, "team_size", "team_size is not an integer")
			return rec, false
		}
		if team < 0 {
			dropRow(diags, rowNum, "team_size", "team_size is negative")
			return rec, false
		}
		rec.TeamSize = team
	}

	fundingStr, _ := field("funding")
	if fundingStr == "" {
		defaultField(diags, rowNum, "funding", &defaulted)
	} else {
		funding, err := strconv.ParseFloat(fundingStr, 64)
		if err != nil {
			dropRow(diags, rowNum, "funding", "funding is not numeric")
			return rec, false
		}
		if funding < 0 {
			dropRow(diags, rowNum, "funding", "funding is negative")
			return rec, false
		}
		rec.Funding = funding
	}

	successStr, _ := field("success_rate")
	if successStr == "" {
		defaultField(diags, rowNum, "success_rate", &defaulted)
	} else {
		success, err := strconv.ParseFloat(successStr, 64)
		if err != nil {
			dropRow(diags, rowNum, "success_rate", "success_rate is not numeric")
			return rec, false
		}
		if success < 0 || success > 1 {
			dropRow(diags, rowNum, "success_rate",
				fmt.Sprintf("success_rate %s is outside [0, 1]", successStr))
			return rec, false
		}
		rec.SuccessRate = success
	}

	if defaulted {
		diags.RowsDefaulted++
	}
	return rec, true
}

func dropRow(diags *explorer.LoadDiagnostics, rowNum int, fieldName, reason string) {
	diags.RowsDropped++
	appendDiagnostic(diags, explorer.RowDiagnostic{
		Row:     rowNum,
		Field:   fieldName,
		Reason:  reason,
		Dropped: true,
	})
}

func defaultField(diags *explorer.LoadDiagnostics, rowNum int, fieldName string, defaulted *bool) {
	*defaulted = true
	appendDiagnostic(diags, explorer.RowDiagnostic{
		Row:    rowNum,
		Field:  fieldName,
		Reason: fieldName + " is empty, using zero value",
	})
}

func appendDiagnostic(diags *explorer.LoadDiagnostics, d explorer.RowDiagnostic) {
	if len(diags.Rows) < maxRowDiagnostics {
		diags.Rows = append(diags.Rows, d)
	}
}
