package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	ErrColumnMismatch = errors.New("sample width does not match descriptor count")
	ErrMissingColumn  = errors.New("column missing")
)

// Table holds the flattened metrics, one row per sample and one named
// column per descriptor key. Values are stored column-major.
type Table struct {
	columns []string
	index   map[string]int
	data    [][]float64
	rows    int
}

func newTable(columns []string, rows int) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		data:    make([][]float64, len(columns)),
		rows:    rows,
	}
	for i, c := range columns {
		// first occurrence wins for duplicated keys
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
		t.data[i] = make([]float64, rows)
	}
	return t
}

// Flatten expands the per-sample metric tuples into a table whose column i
// is named after descriptor i. Every sample must carry exactly one value
// per descriptor; the first offending sample fails the whole payload.
func Flatten(details *Details) (*Table, error) {
	if details == nil {
		return nil, errors.New("nil activity details")
	}

	keys := details.Keys()
	samples := details.ActivityDetailMetrics

	for i, s := range samples {
		if len(s.Metrics) != len(keys) {
			return nil, fmt.Errorf(
				"%w: sample %d has %d values, %d descriptors declared",
				ErrColumnMismatch, i, len(s.Metrics), len(keys),
			)
		}
	}

	t := newTable(keys, len(samples))
	for row, s := range samples {
		for col, v := range s.Metrics {
			t.data[col][row] = float64(v)
		}
	}

	return t, nil
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Len() int {
	return t.rows
}

func (t *Table) Empty() bool {
	return t.rows == 0
}

func (t *Table) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// Column returns the values of the named column. The slice is shared with
// the table and must not be modified.
func (t *Table) Column(key string) ([]float64, error) {
	i, ok := t.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, key)
	}
	return t.data[i], nil
}

// Row returns the values of one sample, keyed by column name.
func (t *Table) Row(i int) map[string]float64 {
	row := make(map[string]float64, len(t.columns))
	for c, name := range t.columns {
		row[name] = t.data[c][i]
	}
	return row
}

// Filter returns a new table holding only the rows keep accepts.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var rows []int
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}

	filtered := newTable(t.columns, len(rows))
	for c := range t.columns {
		for j, r := range rows {
			filtered.data[c][j] = t.data[c][r]
		}
	}
	return filtered
}

// Records returns the table as rows of values, nulls as nil.
func (t *Table) Records() [][]*float64 {
	records := make([][]*float64, t.rows)
	for r := 0; r < t.rows; r++ {
		rec := make([]*float64, len(t.columns))
		for c := range t.columns {
			v := t.data[c][r]
			if math.IsNaN(v) {
				continue
			}
			rec[c] = &v
		}
		records[r] = rec
	}
	return records
}

// WriteCSV writes a header line with the column names followed by one line
// per sample. Nulls are written as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}

	line := make([]string, len(t.columns))
	for r := 0; r < t.rows; r++ {
		for c := range t.columns {
			v := t.data[c][r]
			if math.IsNaN(v) {
				line[c] = ""
				continue
			}
			line[c] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
