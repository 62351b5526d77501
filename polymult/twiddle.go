package polymult

import (
	"math/big"
	"math/cmplx"

	"github.com/ALTree/bigfloat"
	lru "github.com/hashicorp/golang-lru/v2"
)

// twiddlePrecisionBits is the working precision used while generating
// twiddle constants with math/big + bigfloat, before rounding down to
// complex128. Grounded on utils/bignum/float.go's use of ALTree/bigfloat
// for high-precision Pi/Log2 constants.
const twiddlePrecisionBits = 128

// TwiddleTable holds every root of unity needed for a mixed-radix FFT of a
// given Size, plus the two named sub-views spec.md §3 describes: one array
// for radix-3 butterflies, one for combined radix-4/5 butterflies. Both
// sub-views are derived from the same underlying root table; splitting them
// out only matters for which butterfly code path consults which slice.
type TwiddleTable struct {
	Size    int
	Roots   []complex128 // Roots[k] = exp(-2*pi*i*k/Size)
	Radix3  []complex128 // Roots[k*Size/3] for k in 0,1,2
	Radix45 []complex128 // Roots[k*Size/4] (k=0..3) followed by Roots[k*Size/5] (k=0..4)
}

func buildTwiddleTable(size int) *TwiddleTable {
	roots := make([]complex128, size)
	pi := bigfloat.Pi(twiddlePrecisionBits)
	for k := 0; k < size; k++ {
		angle := new(big.Float).SetPrec(twiddlePrecisionBits)
		angle.Mul(pi, big.NewFloat(-2*float64(k)/float64(size)))
		a, _ := angle.Float64()
		roots[k] = cmplx.Exp(complex(0, a))
	}
	t := &TwiddleTable{Size: size, Roots: roots}
	if size%3 == 0 {
		t.Radix3 = []complex128{roots[0], roots[size/3], roots[2*size/3]}
	}
	if size%4 == 0 {
		for k := 0; k < 4; k++ {
			t.Radix45 = append(t.Radix45, roots[k*size/4])
		}
	}
	if size%5 == 0 {
		for k := 0; k < 5; k++ {
			t.Radix45 = append(t.Radix45, roots[k*size/5])
		}
	}
	return t
}

// twiddleCacheCap is the hard cap on distinct FFT sizes cached at once
// (spec.md §3: "capped at 40 entries").
const twiddleCacheCap = 40

// TwiddleCache memoizes TwiddleTables by FFT size, evicting the
// least-recently-used entry once more than twiddleCacheCap distinct sizes
// have been requested. Grounded on golang-lru/v2's Cache, chosen over a
// hand-rolled map+list because the teacher corpus (lattigo's table.go)
// caches NTT constants per-ring but never bounds the cache itself — the
// spec's 40-entry cap needs real LRU eviction semantics golang-lru
// provides directly rather than reimplementing.
type TwiddleCache struct {
	cache *lru.Cache[int, *TwiddleTable]
}

// NewTwiddleCache returns an empty cache capped at twiddleCacheCap entries.
func NewTwiddleCache() *TwiddleCache {
	c, err := lru.New[int, *TwiddleTable](twiddleCacheCap)
	if err != nil {
		// Only non-nil when the requested size is <= 0, which
		// twiddleCacheCap never is.
		panic(err)
	}
	return &TwiddleCache{cache: c}
}

// Get returns the TwiddleTable for size, building and caching it on first
// request.
func (tc *TwiddleCache) Get(size int) *TwiddleTable {
	if t, ok := tc.cache.Get(size); ok {
		return t
	}
	t := buildTwiddleTable(size)
	tc.cache.Add(size, t)
	return t
}

// Len reports how many distinct sizes are currently cached.
func (tc *TwiddleCache) Len() int { return tc.cache.Len() }
