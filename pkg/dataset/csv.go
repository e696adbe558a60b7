package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

var nan = math.NaN()

// Options controls CSV ingestion.
type Options struct {
	// LabelColumn names the entity-identifier column (e.g. a site
	// name). It becomes the table's label column rather than a numeric
	// column. Optional.
	LabelColumn string
	// Rename maps raw header names to the names the analysis uses.
	Rename map[string]string
	// MissingSentinel, if set, is a numeric value that denotes a
	// missing measurement (the watershed data uses -999). Matching
	// cells become NaN.
	MissingSentinel *float64
	// Columns restricts the numeric columns kept, in the given order.
	// Empty keeps every non-label column.
	Columns []string
}

// Sentinel is a convenience for Options.MissingSentinel.
func Sentinel(v float64) *float64 { return &v }

// LoadCSV reads a headered CSV file into a Table. Cells that fail to
// parse as numbers, and cells equal to the missing sentinel, become
// NaN; they are reported by DropNA later rather than failing the load.
func LoadCSV(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading header: %w", err)
	}
	for i, h := range header {
		if renamed, ok := opts.Rename[h]; ok {
			header[i] = renamed
		}
	}

	labelIdx := -1
	numericIdx := []int{}
	numericNames := []string{}
	for i, h := range header {
		if opts.LabelColumn != "" && h == opts.LabelColumn {
			labelIdx = i
			continue
		}
		numericIdx = append(numericIdx, i)
		numericNames = append(numericNames, h)
	}
	if opts.LabelColumn != "" && labelIdx < 0 {
		return nil, fmt.Errorf("dataset: label column %q not in header", opts.LabelColumn)
	}

	t := &Table{
		labelName: opts.LabelColumn,
		cols:      numericNames,
	}
	if labelIdx >= 0 {
		t.labels = []string{}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		row := make([]float64, len(numericIdx))
		for k, i := range numericIdx {
			row[k] = parseCell(record[i], opts.MissingSentinel)
		}
		t.rows = append(t.rows, row)
		if labelIdx >= 0 {
			t.labels = append(t.labels, record[labelIdx])
		}
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("dataset: no data rows")
	}

	if len(opts.Columns) > 0 {
		return t.Select(opts.Columns...)
	}
	return t, nil
}

func parseCell(s string, sentinel *float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nan
	}
	if sentinel != nil && v == *sentinel {
		return nan
	}
	return v
}
