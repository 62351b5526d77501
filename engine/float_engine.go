package engine

import "sync/atomic"

// FloatEngine is a minimal, correctness-oriented Engine implementation: each
// coefficient is a plain array of float64 limbs in base 1 (i.e. no carrying
// is performed — limbs simply hold the exact integer values polymult writes
// through lines). It exists to exercise and test the polymult core without
// pulling in a real arbitrary-precision engine, which spec.md §1 explicitly
// places out of scope.
//
// Forward/Inverse/StartNextForward are no-ops here: FloatEngine's plain
// domain and transform domain coincide, since it never performs a transform
// of its own. A real engine (gwnum-style) would instead run its own
// floating-point FFT over Samples in these hooks; polymult only needs the
// hooks to exist and be called at the right points (spec.md §6).
type FloatEngine struct {
	width int

	// forwardCount tracks how many times Forward actually ran, for tests
	// asserting the hook is invoked at the expected points even though it
	// performs no work.
	forwardCount  atomic.Int64
	inverseCount  atomic.Int64
	helpersActive atomic.Int64
}

// NewFloatEngine returns a FloatEngine whose coefficients have the given
// width (must be a positive multiple of LineWidth).
func NewFloatEngine(width int) *FloatEngine {
	if width <= 0 || width%LineWidth != 0 {
		panic("engine: FloatEngine width must be a positive multiple of LineWidth")
	}
	return &FloatEngine{width: width}
}

func (e *FloatEngine) Width() int { return e.width }

func (e *FloatEngine) NewCoefficient() *Coefficient {
	return &Coefficient{Samples: make([]float64, e.width)}
}

func (e *FloatEngine) Forward(c *Coefficient) {
	e.forwardCount.Add(1)
	c.Transformed = true
}

func (e *FloatEngine) Inverse(c *Coefficient) {
	e.inverseCount.Add(1)
	c.Transformed = false
}

func (e *FloatEngine) StartNextForward(c *Coefficient) {
	c.Transformed = false
	e.Forward(c)
}

func (e *FloatEngine) Add(dst, a, b *Coefficient) {
	for i := range dst.Samples {
		dst.Samples[i] = a.Samples[i] + b.Samples[i]
	}
}

func (e *FloatEngine) MulByConstant(dst, a *Coefficient, k float64) {
	for i := range dst.Samples {
		dst.Samples[i] = a.Samples[i] * k
	}
}

// ShallowCopy returns a clone with its own private hook-invocation counters:
// FloatEngine has no read-only precomputed tables to share, so the clone
// starts from a clean slate rather than aliasing the parent's atomics.
// Grounded on the ShallowCopy pattern in ring/basis_extension.go and
// rlwe/evaluator.go (see DESIGN.md).
func (e *FloatEngine) ShallowCopy() Engine {
	return &FloatEngine{width: e.width}
}

func (e *FloatEngine) OnHelperStart() { e.helpersActive.Add(1) }
func (e *FloatEngine) OnHelperStop()  { e.helpersActive.Add(-1) }

// ForwardCount and InverseCount expose the hook-invocation counters for
// tests; they are not part of the Engine interface.
func (e *FloatEngine) ForwardCount() int64 { return e.forwardCount.Load() }
func (e *FloatEngine) InverseCount() int64 { return e.inverseCount.Load() }
