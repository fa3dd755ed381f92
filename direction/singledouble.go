package direction

import (
	"github.com/madscore/mads"
	"golang.org/x/exp/rand"
)

// Single generates exactly one random unit direction. On its own it
// does not positively span R^n: it exists for the LH_SEARCH-style
// exploratory use the spec calls SINGLE, not as a complete poll set.
type Single struct{}

func (Single) Generate(n int, rng *rand.Rand) []mads.Direction {
	return []mads.Direction{mads.DirectionFromFloat64(sampleUnit(n, rng))}
}

// Double generates one random unit direction and its negation. The
// pair spans only a line, so for n > 1 it does not positively span
// R^n.
type Double struct{}

func (Double) Generate(n int, rng *rand.Rand) []mads.Direction {
	d := mads.DirectionFromFloat64(sampleUnit(n, rng))
	return []mads.Direction{d, d.Negate()}
}
