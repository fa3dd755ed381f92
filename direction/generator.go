// Package direction builds the sets of unit-norm directions that the
// poll step scales onto the mesh and adds to a frame center: Ortho 2N,
// QR 2N, N+1 (uniform and neg/quad), Single, Double, and Coordinate.
// All but Single and Double give positive spanning sets of R^n.
package direction

import (
	"math"

	"github.com/madscore/mads"
	"golang.org/x/exp/rand"
)

// Generator produces unit-norm Directions in dimension n. Ortho2N,
// QR2N, NP1Uni and Coordinate return a positive spanning set of R^n;
// Single and Double do not.
type Generator interface {
	Generate(n int, rng *rand.Rand) []mads.Direction
}

// sampleUnit draws n i.i.d. standard normal coordinates and
// renormalizes (Marsaglia's method), retrying if the draw lands
// too close to the origin to normalize stably.
func sampleUnit(n int, rng *rand.Rand) []float64 {
	for {
		v := make([]float64, n)
		sumSq := 0.0
		for i := range v {
			v[i] = rng.NormFloat64()
			sumSq += v[i] * v[i]
		}
		norm := math.Sqrt(sumSq)
		if norm < 1e-12 {
			continue
		}
		for i := range v {
			v[i] /= norm
		}
		return v
	}
}

// householderBasis returns the n orthonormal rows of
// H = I - 2*v*v^T for a unit vector v: H_ii = 1 - 2*v_i^2,
// H_ij = -2*v_i*v_j for j != i.
func householderBasis(v []float64) [][]float64 {
	n := len(v)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				rows[i][j] = 1 - 2*v[i]*v[i]
			} else {
				rows[i][j] = -2 * v[i] * v[j]
			}
		}
	}
	return rows
}

func toDirections(rows [][]float64) []mads.Direction {
	out := make([]mads.Direction, len(rows))
	for i, r := range rows {
		out[i] = mads.DirectionFromFloat64(r)
	}
	return out
}

func withNegations(dirs []mads.Direction) []mads.Direction {
	out := make([]mads.Direction, 0, 2*len(dirs))
	for _, d := range dirs {
		out = append(out, d, d.Negate())
	}
	return out
}
