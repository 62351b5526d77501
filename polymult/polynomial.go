package polymult

import "github.com/nthroot-labs/polymult/engine"

// Polynomial is an ordered sequence of engine coefficients, index 0 being
// the constant term. Nil entries are treated as the zero coefficient.
type Polynomial struct {
	Coeffs []*engine.Coefficient
}

// NewPolynomial allocates a polynomial of the given size using eng.
func NewPolynomial(eng engine.Engine, size int) *Polynomial {
	p := &Polynomial{Coeffs: make([]*engine.Coefficient, size)}
	for i := range p.Coeffs {
		p.Coeffs[i] = eng.NewCoefficient()
	}
	return p
}

// Size returns the number of coefficient slots, including any that are nil.
func (p *Polynomial) Size() int { return len(p.Coeffs) }

// TrueSize returns the index one past the highest non-nil coefficient,
// i.e. the size ignoring trailing nil (implicitly zero) slots.
func (p *Polynomial) TrueSize() int {
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		if p.Coeffs[i] != nil {
			return i + 1
		}
	}
	return 0
}

// Width returns the per-coefficient sample width, taken from the first
// non-nil coefficient, or 0 if the polynomial is entirely nil.
func (p *Polynomial) Width() int {
	for _, c := range p.Coeffs {
		if c != nil {
			return c.Width()
		}
	}
	return 0
}
