package polymult

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/montanaflynn/stats"

	"github.com/nthroot-labs/polymult/internal/mont"
)

// defaultCacheBudgetBytes returns the L2 cache size to plan FFT sizes
// around, falling back to a conservative 256 KiB when cpuid can't
// determine it (e.g. running under an unusual hypervisor). Grounded on the
// teacher's runtime-dispatch use of klauspost/cpuid/v2 — the teacher pulls
// this in for SIMD feature gating; here it drives the same "know the
// hardware, don't guess" idea for cache-aware FFT sizing (spec.md §4.F /
// §4.G planning notes).
func defaultCacheBudgetBytes() int {
	if cpuid.CPU.Cache.L2 > 0 {
		return cpuid.CPU.Cache.L2
	}
	return 256 * 1024
}

// SafetyMargin implements spec.md §6's safety_margin(n1, n2) -> float as the
// number of spare bits of float64 mantissa headroom a linear convolution of
// operands of length n1 and n2 leaves, given a calibration sample of
// recent coefficient magnitudes (e.g. the largest |coefficient| seen across
// a handful of prior calls). The sample's mean plus two standard deviations
// stands in for "the input bit-width to plan around" rather than a fixed
// constant, so a caller whose coefficients are growing across calls gets a
// shrinking margin before precision actually runs out. The result is the
// headroom left over, not an amount to reserve: it shrinks as n1, n2 or the
// sample grow and is negative once the float64 mantissa is exceeded.
//
// Grounded on sign/example.go's use of github.com/montanaflynn/stats for
// sample statistics; the resulting bit-width is fed through
// internal/mont's BRedParams-style precomputed headroom constant rather
// than recomputed inline.
func SafetyMargin(n1, n2 int, magnitudeSample []float64) (float64, error) {
	if len(magnitudeSample) == 0 {
		return 0, &ConfigError{Field: "magnitudeSample", Msg: "must not be empty"}
	}
	bound := magnitudeSample[0]
	if len(magnitudeSample) > 1 {
		mean, err := stats.Mean(magnitudeSample)
		if err != nil {
			return 0, err
		}
		stddev, err := stats.StandardDeviation(magnitudeSample)
		if err != nil {
			return 0, err
		}
		bound = mean + 2*stddev
	}
	inputBits := mont.BitsForMagnitude(bound)
	return mont.NewHeadroom(n1, n2, inputBits).SafetyMargin(), nil
}

// FFTSize reports the FFT length a Plan would pick for a linear
// convolution needing at least need output coefficients.
func FFTSize(need int) int { return nextFFTSize(need, defaultCacheBudgetBytes()) }

// MemRequired estimates the byte footprint of running a polymult call with
// the given operand sizes, options and per-coefficient engine width: the
// two inputs, the (possibly larger, monic-adjusted) output, and one
// scratch line pair per concurrently-active helper.
func MemRequired(size1, size2, engineWidth, numHelpers int, opts Options) (int64, error) {
	plan, err := BuildPlan(size1, size2, opts)
	if err != nil {
		return 0, err
	}
	const bytesPerSample = 8
	in := int64(size1+size2) * int64(engineWidth) * bytesPerSample
	out := int64(plan.OutSize) * int64(engineWidth) * bytesPerSample
	scratch := int64(numHelpers+1) * int64(size1+size2) * 8 * bytesPerSample
	if plan.Algo == AlgoFFT {
		// One padded complex128 buffer (16 bytes/sample) per lane, per
		// operand, per concurrently active helper.
		scratch += int64(numHelpers+1) * int64(plan.FFTSize) * 8 * 16 * 2
	}
	return in + out + scratch, nil
}
