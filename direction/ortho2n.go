package direction

import (
	"github.com/madscore/mads"
	"golang.org/x/exp/rand"
)

// Ortho2N builds 2n directions by reflecting a random unit vector into
// an orthonormal basis via a Householder matrix, then including each
// basis vector and its negation. Rank n, columns sum to (numerically)
// zero: spec.md 4.3's reference orthogonal generator.
type Ortho2N struct{}

func (Ortho2N) Generate(n int, rng *rand.Rand) []mads.Direction {
	v := sampleUnit(n, rng)
	basis := householderBasis(v)
	return withNegations(toDirections(basis))
}
