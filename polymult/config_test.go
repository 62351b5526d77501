package polymult

import "testing"

func TestSafetyMarginRejectsEmptySample(t *testing.T) {
	if _, err := SafetyMargin(4, 4, nil); err == nil {
		t.Fatal("expected error for empty magnitude sample")
	}
}

func TestSafetyMarginShrinksWithConvolutionSize(t *testing.T) {
	sample := []float64{1000, 1100, 900}
	small, err := SafetyMargin(4, 4, sample)
	if err != nil {
		t.Fatal(err)
	}
	large, err := SafetyMargin(4096, 4096, sample)
	if err != nil {
		t.Fatal(err)
	}
	if large >= small {
		t.Fatalf("expected a longer convolution to leave less headroom: small=%v large=%v", small, large)
	}
}

func TestSafetyMarginSingleSample(t *testing.T) {
	got, err := SafetyMargin(8, 8, []float64{256})
	if err != nil {
		t.Fatal(err)
	}
	if got == 0 {
		t.Fatalf("expected a non-trivial margin, got %v", got)
	}
}

func TestFFTSizeAtLeastNeed(t *testing.T) {
	for _, need := range []int{1, 5, 17, 100, 777} {
		if got := FFTSize(need); got < need {
			t.Fatalf("FFTSize(%d) = %d, want >= %d", need, got, need)
		}
	}
}

func TestMemRequiredGrowsWithSize(t *testing.T) {
	small, err := MemRequired(4, 4, 8, 1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	large, err := MemRequired(4096, 4096, 8, 1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if large <= small {
		t.Fatalf("expected larger operands to require more memory: small=%d large=%d", small, large)
	}
}

func TestMemRequiredPropagatesPlanError(t *testing.T) {
	_, err := MemRequired(4, 4, 8, 1, Options{Circular: Circular, Tail: TailHigh})
	if err == nil {
		t.Fatal("expected MemRequired to surface an invalid-options error")
	}
}
