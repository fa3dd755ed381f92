package direction

import (
	"github.com/madscore/mads"
	"golang.org/x/exp/rand"
)

// Coordinate generates the 2n signed unit vectors +-e_i: the
// direction set for plain coordinate search, deterministic and
// independent of rng.
type Coordinate struct{}

func (Coordinate) Generate(n int, rng *rand.Rand) []mads.Direction {
	out := make([]mads.Direction, 0, 2*n)
	for i := 0; i < n; i++ {
		v := make([]float64, n)
		v[i] = 1
		d := mads.DirectionFromFloat64(v)
		out = append(out, d, d.Negate())
	}
	return out
}
