package mads

// Point is an ArrayOfDouble carrying "a position in variable space"
// semantics: two Points are Equal iff every coordinate is Equal, and
// a Point's identity (for the cache and the barrier's incumbent sets)
// is its coordinate vector, nothing else.
type Point struct {
	Coords ArrayOfDouble
}

// NewPoint wraps coords as a Point. It does not copy coords.
func NewPoint(coords ArrayOfDouble) Point { return Point{Coords: coords} }

// PointFromFloat64 builds a Point from plain float64 coordinates.
func PointFromFloat64(v []float64) Point {
	return Point{Coords: ArrayOfDoubleFromFloat64(v)}
}

// Dimension returns the number of coordinates.
func (p Point) Dimension() int { return len(p.Coords) }

// Clone returns a deep copy of p.
func (p Point) Clone() Point { return Point{Coords: p.Coords.Clone()} }

// Equal reports whether p and o have the same dimension and every
// coordinate pair is Double.Equal.
func (p Point) Equal(o Point) bool {
	if len(p.Coords) != len(o.Coords) {
		return false
	}
	for i := range p.Coords {
		if !p.Coords[i].Equal(o.Coords[i]) {
			return false
		}
	}
	return true
}

// Add returns the Point obtained by displacing p by d. Dimensions must
// match; Add panics otherwise, mirroring how gonum/floats panics on
// mismatched slice lengths rather than silently truncating.
func (p Point) Add(d Direction) Point {
	if len(p.Coords) != len(d.Coords) {
		panic("mads: point/direction dimension mismatch")
	}
	out := make(ArrayOfDouble, len(p.Coords))
	for i := range p.Coords {
		out[i] = p.Coords[i].Add(d.Coords[i])
	}
	return Point{Coords: out}
}

// DirectionTo returns the Direction from p to o (o - p).
func (p Point) DirectionTo(o Point) Direction {
	if len(p.Coords) != len(o.Coords) {
		panic("mads: point dimension mismatch")
	}
	out := make(ArrayOfDouble, len(p.Coords))
	for i := range p.Coords {
		out[i] = o.Coords[i].Sub(p.Coords[i])
	}
	return Direction{Coords: out}
}

func (p Point) String() string { return p.Coords.String() }
