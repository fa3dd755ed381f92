package direction

import (
	"github.com/madscore/mads"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// QR2N builds 2n directions from the Q factor of [v | I(:,2:n)],
// where v is a random unit vector and the remaining n-1 columns are
// the last n-1 columns of the identity: an alternative to Ortho2N's
// Householder construction, grounded on gonum/mat's QR type.
type QR2N struct{}

func (QR2N) Generate(n int, rng *rand.Rand) []mads.Direction {
	v := sampleUnit(n, rng)
	data := make([]float64, n*n)
	for r := 0; r < n; r++ {
		data[r*n] = v[r]
	}
	for c := 1; c < n; c++ {
		data[c*n+c] = 1
	}
	m := mat.NewDense(n, n, data)

	var qr mat.QR
	qr.Factorize(m)
	var q mat.Dense
	qr.QTo(&q)

	basis := make([][]float64, n)
	for c := 0; c < n; c++ {
		col := make([]float64, n)
		for r := 0; r < n; r++ {
			col[r] = q.At(r, c)
		}
		basis[c] = col
	}
	return withNegations(toDirections(basis))
}
