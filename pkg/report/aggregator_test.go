package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/usps-tools/addrvalidate/pkg/usps"
)

func validResult(key string) usps.Result {
	return usps.Result{Key: key, FullZIP4: "12345-6789", Valid: true}
}

func invalidResult(key string) usps.Result {
	return usps.Result{Key: key, FullZIP4: usps.FullZIP4Error, ErrorMessage: "simulated failure"}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		results []usps.Result
		want    Summary
	}{
		{
			name:    "empty",
			results: nil,
			want:    Summary{},
		},
		{
			name:    "all valid",
			results: []usps.Result{validResult("A"), validResult("B")},
			want:    Summary{Total: 2, Valid: 2},
		},
		{
			name:    "mixed",
			results: []usps.Result{validResult("A"), invalidResult("B"), invalidResult("C")},
			want:    Summary{Total: 3, Valid: 1, Invalid: 2},
		},
		{
			name:    "all invalid",
			results: []usps.Result{invalidResult("A")},
			want:    Summary{Total: 1, Invalid: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.results)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFinalize_AllInvalid(t *testing.T) {
	results := []usps.Result{invalidResult("A"), invalidResult("B")}

	writeCalled := false
	sum, err := Finalize(results, func([]usps.Result) error {
		writeCalled = true
		return nil
	})

	if !errors.Is(err, ErrAllInvalid) {
		t.Errorf("Finalize() = %v, want ErrAllInvalid", err)
	}

	if writeCalled {
		t.Error("writer should not be called when every record is invalid")
	}

	if sum.Invalid != 2 {
		t.Errorf("Invalid = %d, want 2", sum.Invalid)
	}
}

func TestFinalize_MixedWritesAllRows(t *testing.T) {
	results := []usps.Result{validResult("A"), invalidResult("B"), validResult("C")}

	var written []usps.Result
	sum, err := Finalize(results, func(rs []usps.Result) error {
		written = rs
		return nil
	})
	if err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if len(written) != 3 {
		t.Fatalf("wrote %d rows, want all 3 (invalid rows kept for audit)", len(written))
	}

	for i, r := range written {
		if r.Key != results[i].Key {
			t.Errorf("written[%d].Key = %q, want %q", i, r.Key, results[i].Key)
		}
	}

	if sum != (Summary{Total: 3, Valid: 2, Invalid: 1}) {
		t.Errorf("Summary = %+v, want {3 2 1}", sum)
	}
}

func TestFinalize_EmptyResultsWriteNothing(t *testing.T) {
	writeCalled := false
	sum, err := Finalize(nil, func([]usps.Result) error {
		writeCalled = true
		return nil
	})
	if err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if writeCalled {
		t.Error("writer should not be called for an empty result set")
	}

	if sum.Total != 0 {
		t.Errorf("Total = %d, want 0", sum.Total)
	}
}

func TestFinalize_WriteErrorPropagates(t *testing.T) {
	writeErr := errors.New("disk full")

	_, err := Finalize([]usps.Result{validResult("A")}, func([]usps.Result) error {
		return writeErr
	})

	if !errors.Is(err, writeErr) {
		t.Errorf("Finalize() = %v, want wrapped write error", err)
	}
}

func TestSampleTable(t *testing.T) {
	results := []usps.Result{
		validResult("A1"),
		invalidResult("B2"),
		validResult("C3"),
	}

	rendered := SampleTable(results, 2)

	if !strings.Contains(rendered, "A1") || !strings.Contains(rendered, "B2") {
		t.Errorf("table should contain the first two keys:\n%s", rendered)
	}

	if strings.Contains(rendered, "C3") {
		t.Errorf("table should be truncated to 2 rows:\n%s", rendered)
	}

	if !strings.Contains(strings.ToUpper(rendered), "FULL_ZIP4") {
		t.Errorf("table should carry the output column headers:\n%s", rendered)
	}
}
