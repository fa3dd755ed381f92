package mads

// BBInputType classifies one coordinate's domain, mirroring
// original_source's BBInputType.hpp. Continuous is unrestricted beyond
// bounds and granularity; Integer restricts the coordinate to the
// integer lattice (granularity 1); Binary further restricts the
// domain to the two-element set {0,1}, independent of whatever bounds
// happen to be declared; Categorical marks a coordinate whose integer
// values index an unordered set — poll methods here treat it like
// Integer, since this package does not implement categorical
// neighborhood search.
type BBInputType uint8

const (
	Continuous BBInputType = iota
	Integer
	Binary
	Categorical
)

func (t BBInputType) String() string {
	switch t {
	case Integer:
		return "I"
	case Binary:
		return "B"
	case Categorical:
		return "C"
	default:
		return "R"
	}
}

// ParseBBInputType parses one BB_INPUT_TYPE token, defaulting to
// Continuous for anything it doesn't recognize.
func ParseBBInputType(s string) BBInputType {
	switch s {
	case "I":
		return Integer
	case "B":
		return Binary
	case "C":
		return Categorical
	default:
		return Continuous
	}
}

// BBInputTypeList is the per-coordinate input-type vector a Params
// carries. Its zero value (a nil slice, or every entry left at its
// zero value) means every coordinate is Continuous.
type BBInputTypeList []BBInputType

// At returns the input type of coordinate i, or Continuous if types is
// nil or too short to cover it.
func (types BBInputTypeList) At(i int) BBInputType {
	if i < 0 || i >= len(types) {
		return Continuous
	}
	return types[i]
}
