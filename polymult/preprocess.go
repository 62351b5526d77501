package polymult

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/blake3"

	"github.com/nthroot-labs/polymult/engine"
)

// PreprocessFlags selects which of the two independent preprocessing steps
// spec.md's "Preprocessed Polynomial" component applies.
type PreprocessFlags int

const (
	// PreFFT caches the outer-convolution FFT of every line, for an
	// operand that will be reused as one side of several polymult calls
	// all planned against the same FFTSize.
	PreFFT PreprocessFlags = 1 << iota
	// PreCompress stores a halved-precision (float32) packed copy of the
	// polynomial's samples alongside (or instead of) the live Coefficient
	// buffers, trading precision for memory.
	PreCompress
)

// PreprocessedPolynomial caches work that would otherwise be repeated every
// time the same polynomial is used as an operand.
//
// The teacher-language original recognizes an already-preprocessed operand
// by comparing an internal self_ptr field against the polynomial's own
// address (spec.md §9 REDESIGN FLAGS item 9). Go has no stable object
// address to lean on in the first place — the GC can move nothing here
// since Go never relocates live objects, but relying on pointer identity
// still couples recognition to a specific *Polynomial value surviving
// unchanged, which is exactly the brittleness the flag calls out. Instead,
// Token is a blake3 fingerprint over the polynomial's flattened sample
// bytes plus the preprocessing parameters; Recognizes reports whether a
// given Polynomial still matches the snapshot this value was built from.
// Grounded on sign/hash.go's blake3.New() fingerprinting of serialized
// structures (GenerateMAC).
type PreprocessedPolynomial struct {
	Size        int
	EngineWidth int
	FFTSize     int
	Flags       PreprocessFlags

	// freq[g][lane] holds the outer-convolution FFT of line-group g, lane
	// `lane`, as a slice of length FFTSize. Present only when
	// Flags&PreFFT != 0.
	freq [][engine.LineWidth][]complex128

	// packed holds packPolynomial's float32 encoding. Present only when
	// Flags&PreCompress != 0.
	packed []byte

	Token [32]byte
}

// Preprocess builds a PreprocessedPolynomial from p for later reuse against
// plans whose FFTSize matches fftSize.
func Preprocess(p *Polynomial, fftSize int, flags PreprocessFlags, twiddles *TwiddleCache) (*PreprocessedPolynomial, error) {
	width := p.Width()
	if width == 0 || width%engine.LineWidth != 0 {
		return nil, &NotPreprocessedError{Reason: "polynomial has no coefficients, or coefficient width is not a multiple of the line width"}
	}

	pp := &PreprocessedPolynomial{
		Size: p.Size(), EngineWidth: width, FFTSize: fftSize, Flags: flags,
	}

	if flags&PreFFT != 0 {
		if fftSize < p.Size() {
			return nil, &ConfigError{Field: "fftSize", Msg: "must be at least the polynomial's size"}
		}
		table := twiddles.Get(fftSize)
		numGroups := width / engine.LineWidth
		pp.freq = make([][engine.LineWidth][]complex128, numGroups)
		scratch := make([]Lane, p.Size())
		for g := 0; g < numGroups; g++ {
			ReadLine(p, g, scratch)
			for lane := 0; lane < engine.LineWidth; lane++ {
				x := make([]complex128, table.Size)
				for i, v := range scratch {
					x[i] = complex(v[lane], 0)
				}
				pp.freq[g][lane] = complexDFT(x, table, false)
			}
		}
	}

	if flags&PreCompress != 0 {
		pp.packed = packPolynomial(p)
	}

	pp.Token = pp.fingerprint(p)
	return pp, nil
}

// FreqLine returns the cached outer-FFT of line-group g, lane `lane`, and
// whether PreFFT preprocessing produced one.
func (pp *PreprocessedPolynomial) FreqLine(g, lane int) ([]complex128, bool) {
	if pp.freq == nil || g < 0 || g >= len(pp.freq) {
		return nil, false
	}
	return pp.freq[g][lane], true
}

// Unpack materializes a plain Polynomial from the compressed byte form,
// using eng to allocate coefficients. Only valid when Flags&PreCompress
// was set.
func (pp *PreprocessedPolynomial) Unpack(eng engine.Engine) (*Polynomial, error) {
	if pp.packed == nil {
		return nil, &NotPreprocessedError{Reason: "polynomial was not preprocessed with PreCompress"}
	}
	if eng.Width() != pp.EngineWidth {
		return nil, &engine.ErrWidthMismatch{Want: pp.EngineWidth, Got: eng.Width()}
	}
	return unpackPolynomial(eng, pp.Size, pp.packed), nil
}

// Recognizes reports whether p is content-identical to the polynomial this
// value was preprocessed from, i.e. whether the cached work is still safe
// to reuse for p.
func (pp *PreprocessedPolynomial) Recognizes(p *Polynomial) bool {
	return pp.fingerprint(p) == pp.Token
}

func (pp *PreprocessedPolynomial) fingerprint(p *Polynomial) [32]byte {
	h := blake3.New()

	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(pp.FFTSize))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(pp.Flags))
	h.Write(hdr[:])

	width := p.Width()
	var tmp [8]byte
	for _, c := range p.Coeffs {
		if c == nil {
			h.Write(make([]byte, width*8))
			continue
		}
		for _, v := range c.Samples {
			binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
			h.Write(tmp[:])
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
