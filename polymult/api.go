package polymult

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nthroot-labs/polymult/engine"
)

// Handle is the top-level entry point: one Handle owns a big-number engine,
// a twiddle cache, and (once launched) a helper-thread pool, and exposes
// every public polymult operation (spec.md §6).
type Handle struct {
	mu sync.Mutex

	eng      engine.Engine
	twiddles *TwiddleCache
	pool     *HelperPool

	maxThreads       int
	numThreads       int
	cacheBudgetBytes int

	log zerolog.Logger
}

// NewHandle constructs a Handle bound to eng with a freshly built twiddle
// cache, and no helper pool launched yet (see LaunchHelpers). maxThreads
// bounds SetNumThreads and defaults to 1 if non-positive.
func NewHandle(eng engine.Engine, maxThreads int) *Handle {
	if maxThreads <= 0 {
		maxThreads = 1
	}
	return &Handle{
		eng:              eng,
		twiddles:         NewTwiddleCache(),
		maxThreads:       maxThreads,
		numThreads:       maxThreads,
		cacheBudgetBytes: defaultCacheBudgetBytes(),
		log:              log.With().Str("component", "polymult").Logger(),
	}
}

// SetMaxNumThreads lowers (never raises) the ceiling SetNumThreads may
// request, matching spec.md §6's set_max_num_threads. It must be called
// before LaunchHelpers.
func (h *Handle) SetMaxNumThreads(n int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool != nil {
		return &ConfigError{Field: "maxThreads", Msg: "cannot change after LaunchHelpers"}
	}
	if n <= 0 || n > h.maxThreads {
		return &ConfigError{Field: "maxThreads", Msg: "must be in (0, current max]"}
	}
	h.maxThreads = n
	if h.numThreads > n {
		h.numThreads = n
	}
	return nil
}

// SetNumThreads sets how many threads (1 = just the caller, no helpers)
// the next LaunchHelpers call should start.
func (h *Handle) SetNumThreads(n int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool != nil {
		return &ConfigError{Field: "numThreads", Msg: "cannot change after LaunchHelpers; call Done first"}
	}
	if n <= 0 || n > h.maxThreads {
		return &ConfigError{Field: "numThreads", Msg: "must be in (0, maxThreads]"}
	}
	h.numThreads = n
	return nil
}

// SetCacheSize overrides the default cpuid-derived L2 cache budget used for
// FFT-size planning decisions (see nextFFTSize); has no effect on
// already-cached TwiddleTables, since it only changes what size future
// Plans pick, not the tables built for sizes already requested. Reserved
// for callers that know their deployment's cache topology better than
// cpuid can report it.
func (h *Handle) SetCacheSize(bytes int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if bytes <= 0 {
		bytes = defaultCacheBudgetBytes()
	}
	h.cacheBudgetBytes = bytes
	h.log.Debug().Int("bytes", bytes).Msg("cache size override recorded")
}

// LaunchHelpers starts the persistent helper pool. Calling it twice without
// an intervening Done is a no-op.
func (h *Handle) LaunchHelpers() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool != nil {
		return
	}
	h.pool = NewHelperPool(h.eng, h.numThreads-1)
	h.log.Debug().Int("helpers", h.numThreads-1).Msg("helper pool launched")
}

// WaitOnHelpers blocks until every Dispatch round currently in flight has
// completed. Every Dispatch call in this package is already synchronous
// with respect to its own round, so WaitOnHelpers only needs to take and
// release the lock to observe that no round is concurrently reconfiguring
// the pool; it exists for symmetry with spec.md §6's explicit
// launch/wait pairing.
func (h *Handle) WaitOnHelpers() {
	h.mu.Lock()
	h.mu.Unlock()
}

// Done stops the helper pool, if running. The Handle may be reused after
// Done by calling LaunchHelpers again.
func (h *Handle) Done() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool == nil {
		return
	}
	h.pool.Close()
	h.pool = nil
}

func (h *Handle) dispatch(totalLines int, job func(int)) {
	h.mu.Lock()
	pool := h.pool
	if pool == nil {
		h.mu.Unlock()
		for i := 0; i < totalLines; i++ {
			job(i)
		}
		return
	}
	// HelperPool.Dispatch must not run concurrently with itself (concurrent
	// PolymultSeveral calls reach here together), so a pool round holds h.mu
	// until it completes; this is also what WaitOnHelpers waits on.
	defer h.mu.Unlock()
	pool.Dispatch(totalLines, job)
}

func combineLane(existing, computed Lane, fma FMAMode) Lane {
	switch fma {
	case FMAAdd:
		return addLane(existing, computed)
	case FMASubtract:
		return subLane(computed, existing)
	case FMANegateSubtract:
		return subLane(existing, computed)
	default:
		return computed
	}
}

func foldCircular(out []Lane, circSize int) []Lane {
	folded := make([]Lane, circSize)
	for i, v := range out {
		folded[i%circSize] = addLane(folded[i%circSize], v)
	}
	return folded
}

// applyLineAdjustments applies RLP (negate odd output indices) and global
// negation to one line's worth of convolution output, and folds it down to
// CircSize lanes when the plan is circular.
func applyLineAdjustments(out []Lane, plan *Plan) []Lane {
	if plan.RLP {
		for i := 1; i < len(out); i += 2 {
			out[i] = negLane(out[i])
		}
	}
	if plan.Negate {
		for i := range out {
			out[i] = negLane(out[i])
		}
	}
	if plan.Circular {
		out = foldCircular(out, plan.CircSize)
	}
	return out
}

// Polymult computes dst = a*b (or a*b+dst, a*b-dst or dst-a*b, per
// opts.FMA), resolving opts
// into a Plan and dispatching the per-line-group convolution across the
// Handle's helper pool. a and b, and dst once sized, must share the same
// engine coefficient width.
//
// Monic inputs are supported only when the engine's coefficient width
// equals engine.LineWidth (a single line group): the implicit leading 1 is
// represented as Lane{1,0,...,0} in that sole group, which matches
// FloatEngine's uncarried single-limb convention but is not a
// width-independent general rule — a real multi-limb big-number engine
// would need its own notion of "the value 1" in its domain, which is
// exactly the kind of detail spec.md §1 places on the engine side of the
// boundary.
func (h *Handle) Polymult(dst, a, b *Polynomial, opts Options) error {
	plan, err := h.buildPlanForHandle(a.TrueSize(), b.TrueSize(), opts)
	if err != nil {
		return err
	}
	if opts.Monic && h.eng.Width() != engine.LineWidth {
		return &ConfigError{Field: "Monic", Msg: "only supported for single-line-group engines (width == engine.LineWidth)"}
	}

	width := h.eng.Width()
	numGroups := width / engine.LineWidth
	keepLen := plan.KeepHi - plan.KeepLo
	if plan.Circular {
		keepLen = plan.CircSize
	}
	if dst.Size() != keepLen {
		return &ConfigError{Field: "dst", Msg: "destination polynomial size does not match the plan's kept output range"}
	}

	h.dispatch(numGroups, func(g int) {
		aLines := make([]Lane, plan.Size1)
		bLines := make([]Lane, plan.Size2)
		ReadLine(a, g, aLines[:a.Size()])
		ReadLine(b, g, bLines[:b.Size()])
		if opts.Monic && g == 0 {
			aLines[plan.Size1-1][0] = 1
			bLines[plan.Size2-1][0] = 1
		}

		out := plan.ConvolveLine(aLines, bLines, h.twiddles)
		out = applyLineAdjustments(out, plan)
		if !plan.Circular {
			out = out[plan.KeepLo:plan.KeepHi]
		}

		existing := make([]Lane, len(out))
		if plan.FMA != FMAOverwrite {
			ReadLine(dst, g, existing)
		}
		for i := range out {
			out[i] = combineLane(existing[i], out[i], plan.FMA)
		}
		WriteLine(dst, g, out, h.eng, PostNone)
	})
	ApplyPostToPolynomial(h.eng, dst, plan.Post)
	return nil
}

// PolymultFMA is Polymult against a destination that already holds the fma
// operand, defaulting opts.FMA to FMAAdd when the caller left it at
// FMAOverwrite; a caller that wants FMSUB or FNMADD sets opts.FMA itself
// before calling, matching spec.md §6's distinct polymult_fma entry point
// taking an explicit fma-combine mode.
func (h *Handle) PolymultFMA(dst, a, b *Polynomial, opts Options) error {
	if opts.FMA == FMAOverwrite {
		opts.FMA = FMAAdd
	}
	return h.Polymult(dst, a, b, opts)
}

// Polymult2 multiplies a by two different operands b1 and b2, reading a's
// lines only once per line group and reusing them for both products.
// Grounded on spec.md §6's polymult2, intended for callers that already
// hold a expanded to lines and want to amortize that read across two
// products.
func (h *Handle) Polymult2(dst1, dst2, a, b1, b2 *Polynomial, opts Options) error {
	plan, err := h.buildPlanForHandle(a.TrueSize(), b1.TrueSize(), opts)
	if err != nil {
		return err
	}
	plan2, err := h.buildPlanForHandle(a.TrueSize(), b2.TrueSize(), opts)
	if err != nil {
		return err
	}
	keepLen1, keepLen2 := plan.KeepHi-plan.KeepLo, plan2.KeepHi-plan2.KeepLo
	if dst1.Size() != keepLen1 || dst2.Size() != keepLen2 {
		return &ConfigError{Field: "dst1/dst2", Msg: "destination sizes do not match their plans' kept output ranges"}
	}

	width := h.eng.Width()
	numGroups := width / engine.LineWidth
	h.dispatch(numGroups, func(g int) {
		aLines := make([]Lane, a.Size())
		ReadLine(a, g, aLines)

		b1Lines := make([]Lane, b1.Size())
		ReadLine(b1, g, b1Lines)
		out1 := applyLineAdjustments(plan.ConvolveLine(aLines, b1Lines, h.twiddles), plan)
		WriteLine(dst1, g, out1[plan.KeepLo:plan.KeepHi], h.eng, PostNone)

		b2Lines := make([]Lane, b2.Size())
		ReadLine(b2, g, b2Lines)
		out2 := applyLineAdjustments(plan2.ConvolveLine(aLines, b2Lines, h.twiddles), plan2)
		WriteLine(dst2, g, out2[plan2.KeepLo:plan2.KeepHi], h.eng, PostNone)
	})
	ApplyPostToPolynomial(h.eng, dst1, plan.Post)
	ApplyPostToPolynomial(h.eng, dst2, plan2.Post)
	return nil
}

// PolymultSeveral multiplies a against every entry of bs concurrently,
// writing results into the correspondingly-indexed entry of dsts. Unlike
// Polymult2's shared-line-group dispatch, each (a, bs[i]) pair here is an
// independent top-level Polymult call, fanned out with an errgroup rather
// than the persistent helper pool — a one-shot bounded-concurrency shape
// distinct from the pool's persistent-goroutine shape, following
// golang.org/x/sync/errgroup's use elsewhere in the example pack for
// exactly this "many independent one-shot calls" case. Each of those calls
// still dispatches its own line groups through the Handle's helper pool,
// one call's round at a time.
func (h *Handle) PolymultSeveral(dsts []*Polynomial, a *Polynomial, bs []*Polynomial, opts Options) error {
	if len(dsts) != len(bs) {
		return &ConfigError{Field: "dsts/bs", Msg: "must have equal length"}
	}
	var g errgroup.Group
	for i := range bs {
		i := i
		g.Go(func() error {
			return h.Polymult(dsts[i], a, bs[i], opts)
		})
	}
	return g.Wait()
}

// PolymultPreprocessed multiplies a preprocessed operand pre against b using
// pre's cached outer-FFT. It returns a *NotPreprocessedError unless pre was
// built with PreFFT, the resolved plan uses AlgoFFT, and the plan's FFTSize
// equals pre.FFTSize; there is no fallback to an ordinary multiplication.
func (h *Handle) PolymultPreprocessed(dst *Polynomial, pre *PreprocessedPolynomial, b *Polynomial, opts Options) error {
	plan, err := h.buildPlanForHandle(pre.Size, b.TrueSize(), opts)
	if err != nil {
		return err
	}
	if plan.Algo != AlgoFFT || plan.FFTSize != pre.FFTSize || pre.freq == nil {
		return &NotPreprocessedError{Reason: "preprocessed FFT cache does not match the plan this call resolved"}
	}
	keepLen := plan.KeepHi - plan.KeepLo
	if dst.Size() != keepLen {
		return &ConfigError{Field: "dst", Msg: "destination polynomial size does not match the plan's kept output range"}
	}

	width := h.eng.Width()
	numGroups := width / engine.LineWidth
	h.dispatch(numGroups, func(g int) {
		bLines := make([]Lane, b.Size())
		ReadLine(b, g, bLines)

		table := h.twiddles.Get(plan.FFTSize)
		out := make([]Lane, plan.OutSize)
		for lane := 0; lane < engine.LineWidth; lane++ {
			fb := make([]complex128, table.Size)
			for i, v := range bLines {
				fb[i] = complex(v[lane], 0)
			}
			fb = complexDFT(fb, table, false)

			fa, _ := pre.FreqLine(g, lane)
			prod := make([]complex128, table.Size)
			for i := range prod {
				prod[i] = fa[i] * fb[i]
			}
			inv := complexDFT(prod, table, true)
			for i := 0; i < plan.OutSize; i++ {
				out[i][lane] = realPart(inv[i]) / float64(table.Size)
			}
		}
		out = applyLineAdjustments(out, plan)
		if !plan.Circular {
			out = out[plan.KeepLo:plan.KeepHi]
		}
		WriteLine(dst, g, out, h.eng, PostNone)
	})
	ApplyPostToPolynomial(h.eng, dst, plan.Post)
	return nil
}

func realPart(c complex128) float64 { return real(c) }
