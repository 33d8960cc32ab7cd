package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrRowWidth indicates a data row whose width differs from the declared
// column count N. The wrap names the offending row index.
var ErrRowWidth = errors.New("dataset: row width mismatch")

// Cell is one tagged observation: Present(x) or Missing. The zero value is
// Missing.
type Cell struct {
	value   float64
	present bool
}

// Present returns a cell carrying a concrete value.
func Present(x float64) Cell { return Cell{value: x, present: true} }

// Missing is the absent cell.
var Missing = Cell{}

// Value returns the cell's value and whether it is present.
func (c Cell) Value() (float64, bool) { return c.value, c.present }

// IsMissing reports whether the cell carries no value.
func (c Cell) IsMissing() bool { return !c.present }

// Dataset is an immutable T×N table of tagged cells.
type Dataset struct {
	rows [][]Cell
	n    int
}

// New validates that every row has exactly n cells and returns the table.
// Fails with ErrRowWidth on the first offending row.
func New(rows [][]Cell, n int) (*Dataset, error) {
	for t, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowWidth, t, len(row), n)
		}
	}
	copied := make([][]Cell, len(rows))
	for t, row := range rows {
		copied[t] = append([]Cell(nil), row...)
	}

	return &Dataset{rows: copied, n: n}, nil
}

// FromRows converts a plain numeric table into tagged cells, treating every
// value for which missing returns true as Missing. This is the one place a
// sentinel encoding is allowed to exist; past this boundary only tags remain.
func FromRows(rows [][]float64, n int, missing func(float64) bool) (*Dataset, error) {
	cells := make([][]Cell, len(rows))
	for t, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrRowWidth, t, len(row), n)
		}
		cells[t] = make([]Cell, n)
		for i, x := range row {
			if missing != nil && missing(x) {
				continue // zero value is Missing
			}
			cells[t][i] = Present(x)
		}
	}

	return &Dataset{rows: cells, n: n}, nil
}

// ReadCSV parses a header-prefixed CSV stream into a Dataset with n columns.
// Empty fields and the markers "NA" and "NaN" (case-insensitive) become
// Missing. Width violations surface as ErrRowWidth with the 0-based data row
// index; parse failures carry the row and column.
func ReadCSV(r io.Reader, n int) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // width is checked here, with a better error

	var rows [][]Cell
	header := true
	t := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) != n {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrRowWidth, t, len(record), n)
		}
		row := make([]Cell, n)
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" || strings.EqualFold(field, "NA") || strings.EqualFold(field, "NaN") {
				continue
			}
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d col %d: %w", t, i, err)
			}
			row[i] = Present(x)
		}
		rows = append(rows, row)
		t++
	}

	return &Dataset{rows: rows, n: n}, nil
}

// T returns the number of time steps.
func (d *Dataset) T() int { return len(d.rows) }

// N returns the number of columns.
func (d *Dataset) N() int { return d.n }

// At returns the cell at time t (0-based) and column i.
func (d *Dataset) At(t, i int) Cell { return d.rows[t][i] }

// MaskHidden returns a copy of the table with every column NOT listed in
// observed forced to Missing. Hidden-role positions are latent at every time
// step regardless of what a source file happens to contain.
func (d *Dataset) MaskHidden(observed []int) *Dataset {
	keep := make([]bool, d.n)
	for _, i := range observed {
		if i >= 0 && i < d.n {
			keep[i] = true
		}
	}
	rows := make([][]Cell, len(d.rows))
	for t, row := range d.rows {
		rows[t] = make([]Cell, d.n)
		for i, c := range row {
			if keep[i] {
				rows[t][i] = c
			}
		}
	}

	return &Dataset{rows: rows, n: d.n}
}
