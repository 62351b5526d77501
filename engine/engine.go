// Package engine defines the contract that polymult expects from an external
// big-number engine, along with one concrete, minimal implementation used to
// exercise and test the polymult core.
//
// The engine itself — arbitrary-precision integer arithmetic with its own
// internal forward/inverse transform — is explicitly out of scope for
// polymult (see spec.md §1); this package only specifies and implements the
// narrow surface polymult actually calls.
package engine

import "fmt"

// LineWidth is the width, in float64 samples, of one cache line as seen by
// the polymult core. Every Coefficient's internal sample buffer is a
// multiple of LineWidth long.
const LineWidth = 8

// Coefficient is an opaque big-number handle. polymult never interprets its
// bits except through the operations below or through raw line reads of its
// Samples buffer.
type Coefficient struct {
	// Samples holds the coefficient's internal representation: a balanced
	// floating-point limb array, possibly currently sitting in the engine's
	// own (opaque) per-number transform domain.
	Samples []float64

	// Transformed records whether Samples currently holds the engine's
	// transform-domain representation rather than its plain-domain one.
	Transformed bool
}

// Width returns the number of float64 samples backing the coefficient.
func (c *Coefficient) Width() int {
	if c == nil {
		return 0
	}
	return len(c.Samples)
}

// NumLines returns the number of LineWidth-wide lines backing the
// coefficient.
func (c *Coefficient) NumLines() int {
	return c.Width() / LineWidth
}

// Engine is the contract polymult requires from the big-number engine it is
// layered on top of.
type Engine interface {
	// Width returns the per-coefficient sample width (N) this engine
	// produces for coefficients it allocates; always a multiple of
	// engine.LineWidth.
	Width() int

	// NewCoefficient allocates a zeroed coefficient of this engine's width.
	// Real gwnum-style implementations carry a header immediately preceding
	// the returned buffer; polymult never observes that header directly, it
	// only ever receives the *Coefficient value.
	NewCoefficient() *Coefficient

	// Forward moves c into the engine's own transform domain, in place.
	// Forward is idempotent: calling it on an already-transformed
	// coefficient is a no-op.
	Forward(c *Coefficient)

	// Inverse moves c out of the engine's transform domain, in place.
	Inverse(c *Coefficient)

	// StartNextForward begins a fresh forward transform of c, discarding
	// whatever domain it was previously in. Used by polymult's
	// StartNextForward post-action.
	StartNextForward(c *Coefficient)

	// Add sets dst = a+b, all of the engine's width.
	Add(dst, a, b *Coefficient)

	// MulByConstant sets dst = a*k.
	MulByConstant(dst, a *Coefficient, k float64)

	// ShallowCopy returns a clone of the engine suitable for exclusive use
	// by one helper thread: read-only precomputed tables are shared, any
	// mutable scratch state is private to the clone. Grounded on
	// ring.BasisExtender.ShallowCopy / rlwe.Evaluator.ShallowCopy (see
	// DESIGN.md).
	ShallowCopy() Engine

	// OnHelperStart/OnHelperStop are explicit lifecycle hooks a helper
	// thread invokes on start and stop, replacing action-code callbacks
	// with typed methods.
	OnHelperStart()
	OnHelperStop()
}

// ErrWidthMismatch is returned when an operation receives coefficients of
// differing widths.
type ErrWidthMismatch struct {
	Want, Got int
}

func (e *ErrWidthMismatch) Error() string {
	return fmt.Sprintf("engine: coefficient width mismatch: want %d, got %d", e.Want, e.Got)
}
