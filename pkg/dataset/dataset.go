// Package dataset loads and cleans the rectangular CSV tables the
// analysis reports run on: column renaming, sentinel-to-missing
// conversion, row filtering, and z-score standardization.
package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Table is an in-memory rectangular table: one optional string label
// column plus named float64 columns. Missing values are NaN.
type Table struct {
	labelName string
	labels    []string
	cols      []string
	rows      [][]float64
}

// Columns returns the numeric column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Labels returns the label column values, or nil if the table has no
// label column.
func (t *Table) Labels() []string {
	if t.labels == nil {
		return nil
	}
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Row returns row i's numeric values.
func (t *Table) Row(i int) []float64 {
	out := make([]float64, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

func (t *Table) colIndex(name string) (int, error) {
	for i, c := range t.cols {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("dataset: no column %q", name)
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	idx, err := t.colIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Select returns a new table restricted to the named columns, keeping
// the label column.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, err := t.colIndex(c)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}

	out := &Table{
		labelName: t.labelName,
		cols:      append([]string(nil), cols...),
		rows:      make([][]float64, len(t.rows)),
	}
	if t.labels != nil {
		out.labels = append([]string(nil), t.labels...)
	}
	for i, r := range t.rows {
		row := make([]float64, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.rows[i] = row
	}
	return out, nil
}

// DropNA removes every row containing a NaN and reports how many rows
// were dropped.
func (t *Table) DropNA() int {
	kept := t.rows[:0]
	var keptLabels []string
	if t.labels != nil {
		keptLabels = t.labels[:0]
	}
	dropped := 0
	for i, r := range t.rows {
		hasNaN := false
		for _, v := range r {
			if math.IsNaN(v) {
				hasNaN = true
				break
			}
		}
		if hasNaN {
			dropped++
			continue
		}
		kept = append(kept, r)
		if t.labels != nil {
			keptLabels = append(keptLabels, t.labels[i])
		}
	}
	t.rows = kept
	if t.labels != nil {
		t.labels = keptLabels
	}
	return dropped
}

// Filter keeps only rows for which pred returns true and reports how
// many rows were removed.
func (t *Table) Filter(pred func(row []float64) bool) int {
	kept := t.rows[:0]
	var keptLabels []string
	if t.labels != nil {
		keptLabels = t.labels[:0]
	}
	dropped := 0
	for i, r := range t.rows {
		if !pred(r) {
			dropped++
			continue
		}
		kept = append(kept, r)
		if t.labels != nil {
			keptLabels = append(keptLabels, t.labels[i])
		}
	}
	t.rows = kept
	if t.labels != nil {
		t.labels = keptLabels
	}
	return dropped
}

// Apply transforms the named column in place. Used for unit
// conversions (e.g. mg/L to meq/L) before standardization.
func (t *Table) Apply(name string, f func(float64) float64) error {
	idx, err := t.colIndex(name)
	if err != nil {
		return err
	}
	for _, r := range t.rows {
		r[idx] = f(r[idx])
	}
	return nil
}

// Standardize rescales every column to zero mean and unit variance.
// Columns with zero variance cannot be standardized and are an error.
// Rows must be complete: call DropNA first.
func (t *Table) Standardize() error {
	if len(t.rows) < 2 {
		return fmt.Errorf("dataset: need at least 2 rows to standardize, have %d", len(t.rows))
	}
	col := make([]float64, len(t.rows))
	for j, name := range t.cols {
		for i, r := range t.rows {
			if math.IsNaN(r[j]) {
				return fmt.Errorf("dataset: column %q row %d is missing; drop or impute before standardizing", name, i)
			}
			col[i] = r[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			return fmt.Errorf("dataset: column %q has zero variance", name)
		}
		for i := range t.rows {
			t.rows[i][j] = (t.rows[i][j] - mean) / std
		}
	}
	return nil
}

// Matrix returns the numeric data as a dense row-major matrix.
func (t *Table) Matrix() *mat.Dense {
	m := mat.NewDense(len(t.rows), len(t.cols), nil)
	for i, r := range t.rows {
		m.SetRow(i, r)
	}
	return m
}
