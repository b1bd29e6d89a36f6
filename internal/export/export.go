// Package export implements the export producer: serializing a filtered view
// of project records to CSV.
//
// Export is a stateless pure transformation: the same view always produces
// byte-identical output, and an empty view produces a header-only document.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// ExportError reports an I/O failure while producing the output stream.
// Filter state and the loaded dataset are unaffected by an export failure.
type ExportError struct {
	// Destination describes where the export was headed (path or "stream")
	Destination string

	// Err is the underlying I/O error
	Err error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Destination, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Write serializes the view to w as CSV in the canonical column order.
// Returns the number of data rows written (excluding the header).
//
// Numeric fields use locale-independent decimal text; text fields containing
// the delimiter, quotes, or line breaks are quoted per RFC 4180. Records
// without coordinates emit empty x/y/z cells, which Load reads back as an
// absent triple.
func Write(w io.Writer, view []explorer.ProjectRecord) (int, error) {
	return write(w, view, "stream")
}

func write(w io.Writer, view []explorer.ProjectRecord, destination string) (int, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write(dataset.Columns); err != nil {
		return 0, &ExportError{Destination: destination, Err: err}
	}

	rows := 0
	for _, rec := range view {
		if err := cw.Write(recordRow(rec)); err != nil {
			return rows, &ExportError{Destination: destination, Err: err}
		}
		rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, &ExportError{Destination: destination, Err: err}
	}
	return rows, nil
}

// Bytes serializes the view to an in-memory CSV document.
func Bytes(view []explorer.ProjectRecord) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := write(&buf, view, "buffer"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serializes the view to the file at path, creating or truncating
// it. Returns the number of data rows written.
func WriteFile(path string, view []explorer.ProjectRecord) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		exportErr := &ExportError{Destination: path, Err: err}
		logger.LogExportEnd(path, 0, 0, exportErr)
		return 0, exportErr
	}

	rows, writeErr := write(f, view, path)
	closeErr := f.Close()
	if writeErr != nil {
		logger.LogExportEnd(path, rows, 0, writeErr)
		return rows, writeErr
	}
	if closeErr != nil {
		exportErr := &ExportError{Destination: path, Err: closeErr}
		logger.LogExportEnd(path, rows, 0, exportErr)
		return rows, exportErr
	}

	info, statErr := os.Stat(path)
	size := 0
	if statErr == nil {
		size = int(info.Size())
	}
	logger.LogExportEnd(path, rows, size, nil)
	return rows, nil
}

// recordRow formats one record in the canonical column order.
func recordRow(rec explorer.ProjectRecord) []string {
	var x, y, z string
	if rec.Coords != nil {
		x = formatFloat(rec.Coords.X)
		y = formatFloat(rec.Coords.Y)
		z = formatFloat(rec.Coords.Z)
	}
	return []string{
		rec.Title,
		rec.Category,
		rec.Description,
		x,
		y,
		z,
		strconv.Itoa(rec.LaunchYear),
		strconv.Itoa(rec.TeamSize),
		formatFloat(rec.Funding),
		formatFloat(rec.SuccessRate),
	}
}

// formatFloat renders a float with the shortest representation that
// round-trips, using '.' as the decimal separator regardless of locale.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
