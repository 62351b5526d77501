package polymult

import (
	"math"
	"testing"

	"github.com/nthroot-labs/polymult/engine"
)

func TestPreprocessRecognizes(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	p := setScalarPoly(eng, []float64{1, 2, 3, 4, 5})

	twiddles := NewTwiddleCache()
	fftSize := nextFFTSize(p.Size(), 0)
	pre, err := Preprocess(p, fftSize, PreFFT, twiddles)
	if err != nil {
		t.Fatal(err)
	}
	if !pre.Recognizes(p) {
		t.Fatal("Recognizes should be true for the exact polynomial preprocessed")
	}

	p.Coeffs[0].Samples[0] = 999
	if pre.Recognizes(p) {
		t.Fatal("Recognizes should be false after mutating the polynomial")
	}
}

func TestPolymultPreprocessedRejectsIncompatibleSize(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	h := NewHandle(eng, 1)
	h.LaunchHelpers()
	defer h.Done()

	av := make([]float64, 70)
	for i := range av {
		av[i] = float64(i%9) - 4
	}
	a := setScalarPoly(eng, av)
	plan, err := BuildPlan(a.TrueSize(), 65, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Algo != AlgoFFT {
		t.Fatalf("expected FFT algorithm for setup sizes, got %v", plan.Algo)
	}
	pre, err := Preprocess(a, plan.FFTSize, PreFFT, h.twiddles)
	if err != nil {
		t.Fatal(err)
	}

	// A much larger second operand forces a different FFTSize than the one
	// pre was built against, which must be rejected rather than silently
	// mismatched.
	bBig := setScalarPoly(eng, make([]float64, 4000))
	dst := NewPolynomial(eng, pre.Size+4000-1)
	if err := h.PolymultPreprocessed(dst, pre, bBig, Options{}); err == nil {
		t.Fatal("expected an incompatible-size preprocessed call to fail deterministically")
	}
}

func TestPreprocessCompressRoundTrip(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	p := setScalarPoly(eng, []float64{1, -2, 3, -4})

	pre, err := Preprocess(p, 0, PreCompress, NewTwiddleCache())
	if err != nil {
		t.Fatal(err)
	}
	got, err := pre.Unpack(eng)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range scalarsOf(p) {
		if math.Abs(scalarsOf(got)[i]-v) > 1e-6 {
			t.Fatalf("unpacked[%d] = %v, want %v", i, scalarsOf(got)[i], v)
		}
	}
}

func TestPolymultPreprocessedMatchesPlainPolymult(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	h := NewHandle(eng, 1)
	h.LaunchHelpers()
	defer h.Done()

	av := make([]float64, 70)
	bv := make([]float64, 65)
	for i := range av {
		av[i] = float64(i%9) - 4
	}
	for i := range bv {
		bv[i] = float64((i*5)%7) - 3
	}
	a := setScalarPoly(eng, av)
	b := setScalarPoly(eng, bv)

	plan, err := BuildPlan(a.TrueSize(), b.TrueSize(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Algo != AlgoFFT {
		t.Fatalf("expected plan to pick FFT for sizes (%d,%d), got %v", len(av), len(bv), plan.Algo)
	}

	plainDst := NewPolynomial(eng, plan.OutSize)
	if err := h.Polymult(plainDst, a, b, Options{}); err != nil {
		t.Fatal(err)
	}

	pre, err := Preprocess(a, plan.FFTSize, PreFFT, h.twiddles)
	if err != nil {
		t.Fatal(err)
	}
	preDst := NewPolynomial(eng, plan.OutSize)
	if err := h.PolymultPreprocessed(preDst, pre, b, Options{}); err != nil {
		t.Fatal(err)
	}

	for i, v := range scalarsOf(plainDst) {
		if math.Abs(scalarsOf(preDst)[i]-v) > 1e-5 {
			t.Fatalf("index %d: preprocessed=%v plain=%v", i, scalarsOf(preDst)[i], v)
		}
	}
}

// TestPolymultPreprocessedMatchesPlainForManyOperands is spec.md §8 scenario
// 6: one PreFFT-preprocessed operand is reused against ten random second
// operands, each checked against the unpreprocessed path.
func TestPolymultPreprocessedMatchesPlainForManyOperands(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	h := NewHandle(eng, 1)
	h.LaunchHelpers()
	defer h.Done()

	av := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	a := setScalarPoly(eng, av)

	plan, err := BuildPlan(a.TrueSize(), 8, Options{})
	if err != nil {
		t.Fatal(err)
	}
	pre, err := Preprocess(a, plan.FFTSize, PreFFT, h.twiddles)
	if err != nil {
		t.Fatal(err)
	}

	rng := []float64{1, 3, 7, 11, 13} // deterministic "random" seed values
	for trial := 0; trial < 10; trial++ {
		bv := make([]float64, 8)
		for i := range bv {
			bv[i] = rng[(i+trial)%len(rng)] - float64(trial)
		}
		b := setScalarPoly(eng, bv)

		plainDst := NewPolynomial(eng, plan.OutSize)
		if err := h.Polymult(plainDst, a, b, Options{}); err != nil {
			t.Fatal(err)
		}
		preDst := NewPolynomial(eng, plan.OutSize)
		if err := h.PolymultPreprocessed(preDst, pre, b, Options{}); err != nil {
			t.Fatal(err)
		}
		for i, v := range scalarsOf(plainDst) {
			if math.Abs(scalarsOf(preDst)[i]-v) > 1e-5 {
				t.Fatalf("trial %d index %d: preprocessed=%v plain=%v", trial, i, scalarsOf(preDst)[i], v)
			}
		}
	}
}
