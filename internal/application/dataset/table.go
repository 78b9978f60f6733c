// Package dataset provides the tabular (CSV) data layer shared by the
// curation and matching pipelines: loading, column access, row filtering,
// column annotation and saving.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Table is an in-memory CSV table: a header plus rows of equal width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Read parses CSV data from r. The first record is the header; ragged rows
// are rejected by the underlying reader.
func Read(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to parse CSV")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetIO, "CSV input has no header row")
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// Load reads the CSV file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to open "+path)
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to load "+path)
	}
	return t, nil
}

// NumRows returns the number of data rows (the header excluded).
func (t *Table) NumRows() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, errors.Newf(errors.ErrCodeColumnNotFound, "column %q not found", name)
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// SetColumn overwrites the named column's values in place.
func (t *Table) SetColumn(name string, values []string) error {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return err
	}
	if len(values) != len(t.Rows) {
		return errors.Newf(errors.ErrCodeShapeMismatch,
			"column length %d does not match row count %d", len(values), len(t.Rows))
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// AddColumn appends a new column. The value count must match the row count.
func (t *Table) AddColumn(name string, values []string) error {
	if _, err := t.ColumnIndex(name); err == nil {
		return errors.Newf(errors.ErrCodeInvalidParam, "column %q already exists", name)
	}
	if len(values) != len(t.Rows) {
		return errors.Newf(errors.ErrCodeShapeMismatch,
			"column length %d does not match row count %d", len(values), len(t.Rows))
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Filter returns a new table holding the rows for which keep returns true.
// The header and row slices are shared with the receiver.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Columns: t.Columns}
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// Write emits the table as CSV to w.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to write CSV header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to write CSV row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to flush CSV")
	}
	return nil
}

// Save writes the table to path, creating parent directories as needed.
func (t *Table) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to create "+dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to create "+path)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetIO, "failed to close "+path)
	}
	return nil
}
