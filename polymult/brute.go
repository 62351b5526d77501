package polymult

// bruteForceLine performs schoolbook convolution of two lines, writing
// len(a)+len(b)-1 output lanes into out. out must already be sized and
// zeroed by the caller (ConvolveLine does both).
//
// This is the teacher-free baseline kernel: the examples corpus has no
// direct "naive convolution" precedent (lattigo's ring package only ever
// multiplies pointwise in the NTT domain), so this one component is
// grounded purely on spec.md §4.D's own description rather than on a
// teacher file — see DESIGN.md.
func bruteForceLine(a, b []Lane, out []Lane) {
	for i, av := range a {
		if av == (Lane{}) {
			continue
		}
		for j, bv := range b {
			out[i+j] = addLane(out[i+j], mulLane(av, bv))
		}
	}
}

func mulLane(a, b Lane) Lane {
	var out Lane
	for i := range out {
		out[i] = a[i] * b[i]
	}
	return out
}
