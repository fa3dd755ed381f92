package mads

import "strings"

// ArrayOfDouble is a fixed-length ordered sequence of Double. Point and
// Direction both embed one and layer position or vector semantics on
// top; ArrayOfDouble itself carries no interpretation.
type ArrayOfDouble []Double

// NewArrayOfDouble returns an ArrayOfDouble of length n with every
// coordinate Undefined.
func NewArrayOfDouble(n int) ArrayOfDouble {
	a := make(ArrayOfDouble, n)
	for i := range a {
		a[i] = Undefined()
	}
	return a
}

// ArrayOfDoubleFromFloat64 wraps a []float64, mapping each element
// through NewDouble.
func ArrayOfDoubleFromFloat64(v []float64) ArrayOfDouble {
	a := make(ArrayOfDouble, len(v))
	for i, x := range v {
		a[i] = NewDouble(x)
	}
	return a
}

// Clone returns a copy of a.
func (a ArrayOfDouble) Clone() ArrayOfDouble {
	b := make(ArrayOfDouble, len(a))
	copy(b, a)
	return b
}

// IsComplete reports whether every coordinate of a is defined.
func (a ArrayOfDouble) IsComplete() bool {
	for _, d := range a {
		if !d.IsDefined() {
			return false
		}
	}
	return true
}

// ToFloat64 renders a as a []float64 using Double.Float64 for each
// coordinate. It is the bridge to gonum/mat and gonum/floats, which
// know nothing of the Undefined sentinel.
func (a ArrayOfDouble) ToFloat64() []float64 {
	v := make([]float64, len(a))
	for i, d := range a {
		v[i] = d.Float64()
	}
	return v
}

func (a ArrayOfDouble) String() string {
	parts := make([]string, len(a))
	for i, d := range a {
		parts[i] = d.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
