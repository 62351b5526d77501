package polymult

// karatsubaBreakEven is the line-length below which Karatsuba's recursive
// overhead no longer pays for itself relative to brute force.
const karatsubaBreakEven = 32

// karatsubaLine convolves a and b recursively using the standard three-way
// split, returning a slice of length len(a)+len(b)-1. Falls back to
// bruteForceLine below karatsubaBreakEven or whenever the two inputs are
// unequal length, mirroring spec.md §4.E's "equal-length fast path, brute
// force elsewhere" rule.
func karatsubaLine(a, b []Lane) []Lane {
	n := len(a)
	if n != len(b) || n < karatsubaBreakEven {
		out := make([]Lane, len(a)+len(b)-1)
		bruteForceLine(a, b, out)
		return out
	}
	if n == 1 {
		return []Lane{mulLane(a[0], b[0])}
	}

	mid := n / 2
	aLo, aHi := a[:mid], a[mid:]
	bLo, bHi := b[:mid], b[mid:]

	lo := karatsubaLine(aLo, bLo)
	hi := karatsubaLine(aHi, bHi)

	sumA := addLines(aLo, aHi)
	sumB := addLines(bLo, bHi)
	mid_ := karatsubaLine(sumA, sumB)
	mid_ = subLines(mid_, lo)
	mid_ = subLines(mid_, hi)

	out := make([]Lane, 2*n-1)
	for i, v := range lo {
		out[i] = addLane(out[i], v)
	}
	for i, v := range mid_ {
		out[i+mid] = addLane(out[i+mid], v)
	}
	for i, v := range hi {
		out[i+2*mid] = addLane(out[i+2*mid], v)
	}
	return out
}

// addLines/subLines add or subtract two equal-or-unequal length line
// sequences lane-wise, treating missing tail entries as zero, and return a
// slice the length of the longer input.
func addLines(a, b []Lane) []Lane {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]Lane, n)
	for i := 0; i < n; i++ {
		var av, bv Lane
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = addLane(av, bv)
	}
	return out
}

func subLines(a, b []Lane) []Lane {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]Lane, n)
	for i := 0; i < n; i++ {
		var av, bv Lane
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = subLane(av, bv)
	}
	return out
}
