package mads

import "math"

// NormKind selects which norm Direction.Norm computes.
type NormKind uint8

const (
	L1 NormKind = iota
	L2
	LInf
)

// Direction is an ArrayOfDouble carrying vector semantics: norms, dot
// product, negation and scaling. Unlike Point it has no notion of
// equality beyond the embedded Double comparisons a caller chooses to
// make directly on Coords.
type Direction struct {
	Coords ArrayOfDouble
}

// NewDirection wraps coords as a Direction.
func NewDirection(coords ArrayOfDouble) Direction { return Direction{Coords: coords} }

// DirectionFromFloat64 builds a Direction from plain float64 components.
func DirectionFromFloat64(v []float64) Direction {
	return Direction{Coords: ArrayOfDoubleFromFloat64(v)}
}

// Dimension returns the number of components.
func (d Direction) Dimension() int { return len(d.Coords) }

// Clone returns a deep copy of d.
func (d Direction) Clone() Direction { return Direction{Coords: d.Coords.Clone()} }

// Norm computes the L1, L2, or L-infinity norm of d. Any Undefined
// component makes the whole norm Undefined, per the package's
// conservative propagation rule.
func (d Direction) Norm(kind NormKind) Double {
	if !d.Coords.IsComplete() {
		return Undefined()
	}
	switch kind {
	case L1:
		sum := 0.0
		for _, c := range d.Coords {
			v, _ := c.Value()
			sum += math.Abs(v)
		}
		return NewDouble(sum)
	case LInf:
		max := 0.0
		for _, c := range d.Coords {
			v, _ := c.Value()
			if a := math.Abs(v); a > max {
				max = a
			}
		}
		return NewDouble(max)
	default: // L2
		sum := 0.0
		for _, c := range d.Coords {
			v, _ := c.Value()
			sum += v * v
		}
		return NewDouble(math.Sqrt(sum))
	}
}

// Dot returns the dot product of d and o.
func (d Direction) Dot(o Direction) Double {
	if len(d.Coords) != len(o.Coords) {
		panic("mads: direction dimension mismatch")
	}
	sum := Double{kind: finiteKind, val: 0}
	for i := range d.Coords {
		sum = sum.Add(d.Coords[i].Mul(o.Coords[i]))
	}
	return sum
}

// Negate returns -d.
func (d Direction) Negate() Direction {
	out := make(ArrayOfDouble, len(d.Coords))
	for i, c := range d.Coords {
		out[i] = c.Neg()
	}
	return Direction{Coords: out}
}

// Scale returns d scaled componentwise by factor.
func (d Direction) Scale(factor float64) Direction {
	f := NewDouble(factor)
	out := make(ArrayOfDouble, len(d.Coords))
	for i, c := range d.Coords {
		out[i] = c.Mul(f)
	}
	return Direction{Coords: out}
}

// Add returns the componentwise sum of two directions.
func (d Direction) Add(o Direction) Direction {
	if len(d.Coords) != len(o.Coords) {
		panic("mads: direction dimension mismatch")
	}
	out := make(ArrayOfDouble, len(d.Coords))
	for i := range d.Coords {
		out[i] = d.Coords[i].Add(o.Coords[i])
	}
	return Direction{Coords: out}
}

func (d Direction) String() string { return d.Coords.String() }
