package polymult

import (
	"math"
	"math/rand"
	"testing"
)

func scalarLanes(vals []float64) []Lane {
	out := make([]Lane, len(vals))
	for i, v := range vals {
		out[i][0] = v
	}
	return out
}

func lanesAlmostEqual(t *testing.T, got, want []Lane, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		for lane := 0; lane < 8; lane++ {
			if math.Abs(got[i][lane]-want[i][lane]) > eps {
				t.Fatalf("lane %d of index %d: got %v, want %v", lane, i, got[i][lane], want[i][lane])
			}
		}
	}
}

func TestFFTLineMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := make([]float64, 40)
	b := make([]float64, 37)
	for i := range a {
		a[i] = math.Round(rng.Float64()*20 - 10)
	}
	for i := range b {
		b[i] = math.Round(rng.Float64()*20 - 10)
	}
	aLanes, bLanes := scalarLanes(a), scalarLanes(b)

	want := make([]Lane, len(a)+len(b)-1)
	bruteForceLine(aLanes, bLanes, want)

	size := nextFFTSize(len(a)+len(b)-1, 0)
	table := buildTwiddleTable(size)
	got := fftLine(aLanes, bLanes, table)

	lanesAlmostEqual(t, got, want, 1e-6)
}

func TestKaratsubaLineMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	n := 64
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = math.Round(rng.Float64()*20 - 10)
		b[i] = math.Round(rng.Float64()*20 - 10)
	}
	aLanes, bLanes := scalarLanes(a), scalarLanes(b)

	want := make([]Lane, 2*n-1)
	bruteForceLine(aLanes, bLanes, want)

	got := karatsubaLine(aLanes, bLanes)
	lanesAlmostEqual(t, got, want, 1e-9)
}

func TestComplexDFTRoundTrip(t *testing.T) {
	x := []complex128{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	table := buildTwiddleTable(len(x))
	freq := complexDFT(x, table, false)
	back := complexDFT(freq, table, true)
	for i, v := range back {
		got := real(v) / float64(len(x))
		if math.Abs(got-real(x[i])) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got, real(x[i]))
		}
	}
}
