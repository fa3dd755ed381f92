package direction

import (
	"math"

	"github.com/madscore/mads"
	"golang.org/x/exp/rand"
)

// NP1Uni builds n+1 directions that positively span R^n with a
// uniform angular distribution: d0 = -(1/sqrt(n)) * sum(Hi), then
// di = (Hi - d0*beta) / sqrt(n), beta = (sqrt(n+1)-1)/sqrt(n), for
// the n Householder basis vectors Hi of a random unit vector; each di
// is then rescaled to unit length.
type NP1Uni struct{}

func (NP1Uni) Generate(n int, rng *rand.Rand) []mads.Direction {
	v := sampleUnit(n, rng)
	basis := toDirections(householderBasis(v))

	sum := mads.DirectionFromFloat64(make([]float64, n))
	for _, h := range basis {
		sum = sum.Add(h)
	}
	invSqrtN := 1 / math.Sqrt(float64(n))
	d0 := sum.Scale(-invSqrtN)

	beta := (math.Sqrt(float64(n+1)) - 1) / math.Sqrt(float64(n))
	out := make([]mads.Direction, 0, n+1)
	out = append(out, d0)
	for _, h := range basis {
		di := h.Add(d0.Scale(-beta)).Scale(invSqrtN)
		if norm, ok := di.Norm(mads.L2).Value(); ok && norm > 0 {
			di = di.Scale(1 / norm)
		}
		out = append(out, di)
	}
	return out
}

// NP1NegQuad is a two-pass generator: the first pass is Ortho2N's 2n
// directions, reduced by the poll step to the n that were actually
// evaluated as a basis; the second pass adds one further direction
// completing the positive spanning set for n+1 total. This
// implementation supplies the NEG rule (the final direction is the
// negated sum of the retained basis, renormalized): the QUAD
// alternative requires a quadratic surrogate model of the blackbox,
// which is out of scope here (see SPEC_FULL.md's surrogate Non-goal).
type NP1NegQuad struct{}

// FirstPass returns the 2n candidate directions (Ortho2N's basis and
// negations) from which the poll step selects the n directions that
// were actually used.
func (NP1NegQuad) FirstPass(n int, rng *rand.Rand) []mads.Direction {
	return Ortho2N{}.Generate(n, rng)
}

// NegDirection completes basis (the n retained first-pass directions)
// with the negated, renormalized sum: the final positive-spanning
// direction under the NEG rule.
func (NP1NegQuad) NegDirection(basis []mads.Direction) mads.Direction {
	if len(basis) == 0 {
		return mads.Direction{}
	}
	n := basis[0].Dimension()
	sum := mads.DirectionFromFloat64(make([]float64, n))
	for _, d := range basis {
		sum = sum.Add(d)
	}
	neg := sum.Negate()
	norm, ok := neg.Norm(mads.L2).Value()
	if !ok || norm < 1e-12 {
		return neg
	}
	return neg.Scale(1 / norm)
}
