package internaldefs

import "testing"

func TestCounterDefNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool, len(CounterDefs))
	for _, def := range CounterDefs {
		if seen[def.Name] {
			t.Fatalf("duplicate counter name %s", def.Name)
		}
		seen[def.Name] = true
	}
}

func TestNormalizeBuckets(t *testing.T) {
	out := NormalizeBuckets([]uint64{1, 2, 3})
	if out[0] != 1 || out[1] != 2 || out[2] != 3 || out[7] != 0 {
		t.Fatalf("unexpected normalization %v", out)
	}

	long := NormalizeBuckets([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 99})
	if long[7] != 1 {
		t.Fatalf("oversized input must be truncated, got %v", long)
	}
}

func TestCumulativeBuckets(t *testing.T) {
	out := CumulativeBuckets([8]uint64{2, 1, 0, 0, 0, 0, 0, 1})
	want := [8]uint64{2, 3, 3, 3, 3, 3, 3, 4}
	if out != want {
		t.Fatalf("expected %v, got %v", want, out)
	}
}

func TestHistogramBoundTablesAlign(t *testing.T) {
	if len(HistogramBounds) != len(HistogramBoundSuffix) {
		t.Fatalf("bounds %d and suffixes %d must align",
			len(HistogramBounds), len(HistogramBoundSuffix))
	}
}
