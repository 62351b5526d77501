package polymult

import "github.com/nthroot-labs/polymult/engine"

// Lane is one cache-line-wide group of samples taken from a single
// coefficient at a single line index.
type Lane [engine.LineWidth]float64

// ReadLine extracts line index idx from every coefficient of p into dst,
// which must have length p.Size(). A nil coefficient contributes a
// zero Lane. Grounded on the 8-wide unsafe.Pointer lane walk in
// ring/murakami.go (MapXX2NToXNAndMurakami), generalized from in-place
// pointer arithmetic to a plain Go slice copy.
func ReadLine(p *Polynomial, idx int, dst []Lane) {
	for i, c := range p.Coeffs {
		if c == nil {
			dst[i] = Lane{}
			continue
		}
		off := idx * engine.LineWidth
		copy(dst[i][:], c.Samples[off:off+engine.LineWidth])
	}
}

// WriteLine writes src back into line index idx of every coefficient of p,
// then applies post to each touched coefficient. Coefficients beyond
// len(src) are left untouched.
func WriteLine(p *Polynomial, idx int, src []Lane, eng engine.Engine, post PostAction) {
	off := idx * engine.LineWidth
	n := len(src)
	if n > len(p.Coeffs) {
		n = len(p.Coeffs)
	}
	for i := 0; i < n; i++ {
		c := p.Coeffs[i]
		if c == nil {
			continue
		}
		copy(c.Samples[off:off+engine.LineWidth], src[i][:])
		applyPostAction(eng, c, post)
	}
}

// ApplyPostToPolynomial applies post once to every non-nil coefficient of
// p. It is meant to run once, after every line of p has already been
// written by WriteLine(..., PostNone) — a post action such as PostInverse
// operates on a coefficient's whole sample buffer, not one line at a time,
// so it must not run until the last line touching that coefficient has
// landed.
func ApplyPostToPolynomial(eng engine.Engine, p *Polynomial, post PostAction) {
	if post == PostNone {
		return
	}
	for _, c := range p.Coeffs {
		if c == nil {
			continue
		}
		applyPostAction(eng, c, post)
	}
}

func applyPostAction(eng engine.Engine, c *engine.Coefficient, post PostAction) {
	switch post {
	case PostNone:
	case PostInverse:
		eng.Inverse(c)
	case PostStartNextForward:
		eng.StartNextForward(c)
	case PostInverseThenForward:
		eng.Inverse(c)
		eng.Forward(c)
	}
}

func addLane(a, b Lane) Lane {
	var out Lane
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}

func subLane(a, b Lane) Lane {
	var out Lane
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}

func scaleLane(a Lane, k float64) Lane {
	var out Lane
	for i := range out {
		out[i] = a[i] * k
	}
	return out
}

func negLane(a Lane) Lane {
	var out Lane
	for i := range out {
		out[i] = -a[i]
	}
	return out
}
