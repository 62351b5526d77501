package polymult

// Algorithm names which line-convolution kernel a Plan has selected.
type Algorithm int

const (
	AlgoBrute Algorithm = iota
	AlgoKaratsuba
	AlgoFFT
)

func (a Algorithm) String() string {
	switch a {
	case AlgoBrute:
		return "brute"
	case AlgoKaratsuba:
		return "karatsuba"
	case AlgoFFT:
		return "fft"
	default:
		return "unknown"
	}
}

// Plan is the immutable result of resolving a pair of input sizes and an
// Options value into concrete execution parameters. Grounded on
// ring/subring.go's NewSubRing / subRingParametersLiteral pattern: resolve
// everything derivable from the inputs exactly once, then hand downstream
// code a value type it never needs to re-derive or re-validate.
type Plan struct {
	Size1, Size2 int
	OutSize      int // length of the full linear convolution, before tail trimming
	KeepLo       int // first output index actually materialized
	KeepHi       int // one past the last output index actually materialized

	Algo    Algorithm
	FFTSize int // meaningful only when Algo == AlgoFFT

	Monic    bool
	RLP      bool
	Negate   bool
	Circular bool
	CircSize int

	Post PostAction
	FMA  FMAMode
}

// BuildPlan validates opts against size1/size2 and resolves a Plan, sizing
// any FFT convolution against the process-wide default cache budget (see
// defaultCacheBudgetBytes). Handle methods call buildPlanForHandle instead,
// so FFT sizing can prefer the calling Handle's actual cache budget (which
// SetCacheSize may have overridden).
func BuildPlan(size1, size2 int, opts Options) (*Plan, error) {
	return buildPlan(size1, size2, opts, defaultCacheBudgetBytes())
}

// buildPlanForHandle is BuildPlan, but sizes any FFT convolution against
// h's own cache budget rather than the process-wide default.
func (h *Handle) buildPlanForHandle(size1, size2 int, opts Options) (*Plan, error) {
	h.mu.Lock()
	budget := h.cacheBudgetBytes
	h.mu.Unlock()
	return buildPlan(size1, size2, opts, budget)
}

func buildPlan(size1, size2 int, opts Options, cacheBudgetBytes int) (*Plan, error) {
	if err := opts.Validate(size1, size2); err != nil {
		return nil, err
	}

	s1, s2 := size1, size2
	if opts.Monic {
		s1++
		s2++
	}

	outSize := s1 + s2 - 1
	keepLo, keepHi := 0, outSize

	switch opts.Tail {
	case TailHigh:
		keepLo = outSize - (opts.Hi - opts.Lo)
		if keepLo < 0 {
			keepLo = 0
		}
	case TailLow:
		keepHi = opts.Hi - opts.Lo
		if keepHi > outSize {
			keepHi = outSize
		}
	case TailMiddle:
		keepLo, keepHi = opts.Lo, opts.Hi
		if keepHi > outSize {
			keepHi = outSize
		}
	}
	if opts.SkipLSW > keepLo {
		keepLo = opts.SkipLSW
	}
	if outSize-opts.SkipMSW < keepHi {
		keepHi = outSize - opts.SkipMSW
	}
	if keepHi < keepLo {
		keepHi = keepLo
	}

	p := &Plan{
		Size1: s1, Size2: s2,
		OutSize: outSize,
		KeepLo:  keepLo, KeepHi: keepHi,
		Monic: opts.Monic, RLP: opts.RLP, Negate: opts.Negate,
		Post: opts.Post, FMA: opts.FMA,
	}
	if opts.Circular == Circular {
		p.Circular = true
		p.CircSize = opts.CircularSize
	}

	convLen := s1
	if s2 > convLen {
		convLen = s2
	}
	switch {
	case convLen < fftBaseBreakEven:
		p.Algo = AlgoKaratsuba
		if convLen < karatsubaBreakEven {
			p.Algo = AlgoBrute
		}
	default:
		p.Algo = AlgoFFT
		p.FFTSize = nextFFTSize(outSize, cacheBudgetBytes)
	}
	return p, nil
}

// ConvolveLine runs the single line-convolution kernel this plan selected,
// returning plan.OutSize lanes (full, untrimmed convolution — callers slice
// to [KeepLo:KeepHi] themselves so the kernels stay agnostic of tail
// trimming, matching spec.md §4.D/E/F describing each kernel independently
// of the tail-mode option layer).
func (p *Plan) ConvolveLine(a, b []Lane, twiddles *TwiddleCache) []Lane {
	switch p.Algo {
	case AlgoBrute:
		out := make([]Lane, p.OutSize)
		bruteForceLine(a, b, out)
		return out
	case AlgoKaratsuba:
		out := karatsubaLine(a, b)
		return padLines(out, p.OutSize)
	case AlgoFFT:
		table := twiddles.Get(p.FFTSize)
		out := fftLine(a, b, table)
		return padLines(out, p.OutSize)
	default:
		panic("polymult: unknown algorithm in Plan")
	}
}

func padLines(lines []Lane, size int) []Lane {
	if len(lines) == size {
		return lines
	}
	out := make([]Lane, size)
	copy(out, lines)
	return out
}
