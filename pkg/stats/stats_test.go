package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/rgreene/envreports/pkg/dataset"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name       string
		xs         []float64
		n, missing int
		mean, sd   float64
		min, max   float64
		median     float64
	}{
		{
			name: "simple series",
			xs:   []float64{2, 4, 4, 4, 5, 5, 7, 9},
			n:    8, missing: 0,
			mean: 5, sd: 2.138089935299395, // sample stddev
			min: 2, max: 9, median: 4,
		},
		{
			name: "NaNs excluded",
			xs:   []float64{1, math.NaN(), 3, math.NaN()},
			n:    2, missing: 2,
			mean: 2, sd: math.Sqrt2,
			min: 1, max: 3, median: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summary("x", tt.xs)
			if s.N != tt.n || s.Missing != tt.missing {
				t.Fatalf("N=%d Missing=%d, want %d/%d", s.N, s.Missing, tt.n, tt.missing)
			}
			approx := func(field string, got, want float64) {
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %g, want %g", field, got, want)
				}
			}
			approx("Mean", s.Mean, tt.mean)
			approx("StdDev", s.StdDev, tt.sd)
			approx("Min", s.Min, tt.min)
			approx("Max", s.Max, tt.max)
			approx("Median", s.Median, tt.median)
		})
	}
}

func TestSummaryAllMissing(t *testing.T) {
	s := Summary("x", []float64{math.NaN(), math.NaN()})
	if s.N != 0 || s.Missing != 2 {
		t.Fatalf("N=%d Missing=%d, want 0/2", s.N, s.Missing)
	}
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Median) {
		t.Error("statistics of an empty series should be NaN")
	}
}

func TestCorrelationMatrix(t *testing.T) {
	// y = 2x exactly, z anticorrelated with x.
	csv := "x,y,z\n1,2,3\n2,4,2\n3,6,1\n4,8,0\n"
	tbl, err := dataset.ReadCSV(strings.NewReader(csv), dataset.Options{})
	if err != nil {
		t.Fatal(err)
	}

	corr, names, err := CorrelationMatrix(tbl)
	if err != nil {
		t.Fatalf("CorrelationMatrix: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("names = %v", names)
	}

	if math.Abs(corr.At(0, 1)-1) > 1e-12 {
		t.Errorf("corr(x,y) = %g, want 1", corr.At(0, 1))
	}
	if math.Abs(corr.At(0, 2)+1) > 1e-12 {
		t.Errorf("corr(x,z) = %g, want -1", corr.At(0, 2))
	}
	for i := 0; i < 3; i++ {
		if math.Abs(corr.At(i, i)-1) > 1e-12 {
			t.Errorf("corr diagonal [%d] = %g, want 1", i, corr.At(i, i))
		}
	}
}

func TestCorrelationMatrixRejectsMissing(t *testing.T) {
	csv := "x,y\n1,2\nn/a,4\n3,6\n"
	tbl, err := dataset.ReadCSV(strings.NewReader(csv), dataset.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := CorrelationMatrix(tbl); err == nil {
		t.Fatal("expected error on missing values, got nil")
	}
}

func TestSummarize(t *testing.T) {
	csv := "a,b\n1,10\n2,20\n3,30\n"
	tbl, err := dataset.ReadCSV(strings.NewReader(csv), dataset.Options{})
	if err != nil {
		t.Fatal(err)
	}
	sums := Summarize(tbl)
	if len(sums) != 2 {
		t.Fatalf("got %d summaries, want 2", len(sums))
	}
	if sums[0].Name != "a" || sums[1].Name != "b" {
		t.Errorf("summary order: %q, %q", sums[0].Name, sums[1].Name)
	}
	if sums[1].Mean != 20 {
		t.Errorf("mean(b) = %g, want 20", sums[1].Mean)
	}
}
