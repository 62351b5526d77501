package polymult

import (
	"math/cmplx"

	"github.com/nthroot-labs/polymult/engine"
)

// fftBaseBreakEven is the line-length below which the FFT kernel defers to
// Karatsuba rather than paying FFT setup cost for a small convolution.
const fftBaseBreakEven = 64

// fftCacheFraction is the share of a cache budget a single FFT working set
// may occupy before nextFFTSize stops looking for a larger, fewer-stage
// mixed-radix size and settles for the strict minimum (spec.md §4.F).
const fftCacheFraction = 4

// fftLaneBytes is the per-coefficient footprint nextFFTSize budgets
// against: engine.LineWidth float64 lanes, matching spec.md §4.F's literal
// "fft_size * 8 * sizeof(double)".
const fftLaneBytes = engine.LineWidth * 8

// nextFFTSize returns the FFT length a Plan should use for a linear
// convolution needing at least need output coefficients.
//
// smallestMixedRadixSize(need) is the strict floor: the smallest size that
// factors entirely into 2, 3, 4 and 5 and is >= need. When cacheBudgetBytes
// is positive, nextFFTSize then looks past that floor for a larger
// mixed-radix size that needs fewer Cooley-Tukey recursion stages — fewer
// stages means fewer twiddle-table indirections per sample — as long as its
// working set (fftLaneBytes * size) still fits within a fftCacheFraction
// share of the budget (spec.md §4.F: FFT size selection "prefers a size for
// which fft_size * 8 * sizeof(double) fits a fraction of L2_CACHE_SIZE").
// cacheBudgetBytes <= 0 disables that preference and returns the floor
// unchanged.
func nextFFTSize(need int, cacheBudgetBytes int) int {
	floor := smallestMixedRadixSize(need)
	if cacheBudgetBytes <= 0 {
		return floor
	}
	budget := cacheBudgetBytes / fftCacheFraction
	if floor*fftLaneBytes > budget {
		return floor
	}

	best := floor
	bestStages := len(radixFactors(floor))
	for cand := floor + 1; cand*fftLaneBytes <= budget && cand <= floor*4; cand++ {
		if !isMixedRadixSize(cand) {
			continue
		}
		if stages := len(radixFactors(cand)); stages < bestStages {
			best, bestStages = cand, stages
		}
	}
	return best
}

// smallestMixedRadixSize returns the smallest value >= need that factors
// entirely into 2, 3, 4 and 5 — a mixed-radix-friendly size (spec.md §4.A).
func smallestMixedRadixSize(need int) int {
	if need <= 1 {
		return 1
	}
	best := -1
	for p5 := 1; p5 < need*5; p5 *= 5 {
		for p3 := p5; p3 < need*5; p3 *= 3 {
			for p2 := p3; p2 < need*5; p2 *= 2 {
				if p2 >= need && (best == -1 || p2 < best) {
					best = p2
				}
				if p2 >= need*5 {
					break
				}
			}
			if p3 >= need*5 {
				break
			}
		}
		if p5 >= need*5 {
			break
		}
	}
	if best == -1 {
		return need
	}
	return best
}

// isMixedRadixSize reports whether n factors entirely into 2, 3, 4 and 5.
func isMixedRadixSize(n int) bool {
	for n > 1 {
		switch {
		case n%5 == 0:
			n /= 5
		case n%4 == 0:
			n /= 4
		case n%3 == 0:
			n /= 3
		case n%2 == 0:
			n /= 2
		default:
			return false
		}
	}
	return true
}

// radixFactors decomposes n into a sequence of radices drawn from
// {5,4,3,2}, largest first, matching spec.md §3's "mixed-radix (2, 3, 4, 5)"
// kernel. n must already be composed solely of those factors.
func radixFactors(n int) []int {
	var fs []int
	for n > 1 {
		switch {
		case n%5 == 0:
			fs = append(fs, 5)
			n /= 5
		case n%4 == 0:
			fs = append(fs, 4)
			n /= 4
		case n%3 == 0:
			fs = append(fs, 3)
			n /= 3
		case n%2 == 0:
			fs = append(fs, 2)
			n /= 2
		default:
			fs = append(fs, n)
			n = 1
		}
	}
	return fs
}

// complexDFT performs a generalized (mixed-radix) Cooley-Tukey DFT of x,
// splitting at each level on the first of 5, 4, 3, 2 that divides len(x)
// (see smallestRadix; this is the same radix order radixFactors reports).
// table must be sized for len(x) (i.e. table.Size == len(x) at the top
// call — recursive sub-calls reuse the same table, since every twiddle a
// smaller sub-problem needs is already present in the top-level table's
// root set). invert selects the sign convention for an inverse transform;
// callers are responsible for dividing by len(x) afterward.
//
// This is the single general recursion that both the radix-3 and combined
// radix-4/5 butterflies in spec.md §3 reduce to; rather than hand-write
// separate fixed-radix butterfly code for each radix, every radix shares
// this one decimation step, reading its twiddles
// from the Component A table spec.md §4.A describes as shared read-only by
// every helper during a call rather than recomputing them.
func complexDFT(x []complex128, table *TwiddleTable, invert bool) []complex128 {
	n := len(x)
	if n == 1 {
		return []complex128{x[0]}
	}
	p := smallestRadix(n)
	m := n / p

	subs := make([][]complex128, p)
	for r := 0; r < p; r++ {
		sub := make([]complex128, m)
		for k := 0; k < m; k++ {
			sub[k] = x[r+k*p]
		}
		subs[r] = complexDFT(sub, table, invert)
	}

	wpPow := radixRoots(table, p, invert)
	stride := table.Size / n

	out := make([]complex128, n)
	for k := 0; k < m; k++ {
		wnk := twiddleRoot(table, k*stride, invert)
		z := make([]complex128, p)
		tw := complex128(1)
		for r := 0; r < p; r++ {
			z[r] = subs[r][k] * tw
			tw *= wnk
		}
		for j := 0; j < p; j++ {
			var sum complex128
			mult := complex128(1)
			for r := 0; r < p; r++ {
				sum += z[r] * mult
				mult *= wpPow[j]
			}
			out[k+j*m] = sum
		}
	}
	return out
}

// twiddleRoot reads the k-th root of unity out of table.Roots (Component
// A), conjugating it for an inverse transform rather than recomputing it
// with cmplx.Exp.
func twiddleRoot(table *TwiddleTable, idx int, invert bool) complex128 {
	r := table.Roots[idx%table.Size]
	if invert {
		return cmplx.Conj(r)
	}
	return r
}

// radixRoots returns the p distinct p-th roots of unity a radix-p butterfly
// needs, sourced from table's named radix-3/radix-4/radix-5 sub-views when
// p is one of those (Component A's Radix3/Radix45 fields), or by striding
// through table.Roots directly for radix-2. invert conjugates the result
// for an inverse transform.
func radixRoots(table *TwiddleTable, p int, invert bool) []complex128 {
	var base []complex128
	switch p {
	case 3:
		base = table.Radix3
	case 4:
		base = table.Radix45[0:4]
	case 5:
		// The radix-4 block, if present, always precedes the radix-5 block
		// (see buildTwiddleTable) — but it's only present when table.Size
		// is itself divisible by 4, which need not hold just because this
		// particular recursion level needs radix 5.
		off := 0
		if table.Size%4 == 0 {
			off = 4
		}
		base = table.Radix45[off : off+5]
	default:
		stride := table.Size / p
		base = make([]complex128, p)
		for j := 0; j < p; j++ {
			base[j] = table.Roots[(j*stride)%table.Size]
		}
	}
	if !invert {
		return base
	}
	out := make([]complex128, len(base))
	for i, v := range base {
		out[i] = cmplx.Conj(v)
	}
	return out
}

func smallestRadix(n int) int {
	for _, p := range []int{5, 4, 3, 2} {
		if n%p == 0 {
			return p
		}
	}
	return n
}

// fftLine convolves a and b via zero-padded FFT, each padded out to a
// shared mixed-radix-friendly size of at least len(a)+len(b)-1, and returns
// the len(a)+len(b)-1 result lanes. table must already be sized for that
// padded length (obtained via TwiddleCache.Get(nextFFTSize(...))).
//
// Each of the engine.LineWidth lanes within a Lane is transformed
// independently using the same twiddle table, modeling the "process eight
// lanes at once" SIMD shape from spec.md §2 as eight scalar transforms
// sharing one precomputed table rather than true machine SIMD, which Go
// cannot portably express without assembly.
func fftLine(a, b []Lane, table *TwiddleTable) []Lane {
	outLen := len(a) + len(b) - 1
	n := table.Size

	fa := make([][]complex128, engine.LineWidth)
	fb := make([][]complex128, engine.LineWidth)
	for lane := 0; lane < engine.LineWidth; lane++ {
		xa := make([]complex128, n)
		xb := make([]complex128, n)
		for i, v := range a {
			xa[i] = complex(v[lane], 0)
		}
		for i, v := range b {
			xb[i] = complex(v[lane], 0)
		}
		fa[lane] = complexDFT(xa, table, false)
		fb[lane] = complexDFT(xb, table, false)
	}

	out := make([]Lane, outLen)
	for lane := 0; lane < engine.LineWidth; lane++ {
		prod := make([]complex128, n)
		for i := range prod {
			prod[i] = fa[lane][i] * fb[lane][i]
		}
		inv := complexDFT(prod, table, true)
		for i := 0; i < outLen; i++ {
			out[i][lane] = real(inv[i]) / float64(n)
		}
	}
	return out
}
