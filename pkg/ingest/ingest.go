// Package ingest decodes the uploaded CSV datasets into the row types the
// analysis engine consumes. Column presence is validated once per file and
// missing required columns fail fast; dropping rows with missing values is
// left to the analysis graph builder.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyFile     = errors.New("input has no header row")
	ErrMissingColumn = errors.New("required column missing")
	ErrTooManyRows   = errors.New("row count exceeds limit")
)

// DefaultMaxRows bounds user-supplied files; there is no upstream
// backpressure, so unbounded input would be held fully in memory.
const DefaultMaxRows = 250_000

// Options tunes a single decode call.
type Options struct {
	// MaxRows caps the number of data rows; 0 means DefaultMaxRows.
	MaxRows int
}

func (o Options) maxRows() int {
	if o.MaxRows <= 0 {
		return DefaultMaxRows
	}
	return o.MaxRows
}

// header maps column names to field positions for one CSV file.
type header struct {
	index map[string]int
}

// resolveHeader validates that every required column is present and returns
// the lookup used for the data rows.
func resolveHeader(record []string, required []string) (*header, error) {
	h := &header{index: make(map[string]int, len(record))}
	for i, name := range record {
		h.index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := h.index[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return h, nil
}

// get returns the trimmed value of a named column, or "" when the column is
// absent or the row is short.
func (h *header) get(record []string, name string) string {
	i, ok := h.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// readTable streams the CSV, validates the header, and hands each data row
// to emit. Rows may have a variable field count; short rows read as empty
// values and are filtered downstream.
func readTable(r io.Reader, required []string, maxRows int, emit func(h *header, record []string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ErrEmptyFile
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	h, err := resolveHeader(first, required)
	if err != nil {
		return err
	}

	rows := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", rows+1, err)
		}
		rows++
		if rows > maxRows {
			return fmt.Errorf("%w: %d", ErrTooManyRows, maxRows)
		}
		emit(h, record)
	}
}
