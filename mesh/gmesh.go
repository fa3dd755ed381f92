package mesh

import (
	"math"

	"github.com/madscore/mads"
)

// GMesh is the MADS default mesh geometry: each coordinate's frame
// size is represented as mantissa*10^exponent with mantissa cycling
// through {1, 2, 5}, and the mesh size is derived from how far the
// exponent has drifted above its initial value.
type GMesh struct {
	dim int

	mantissa []int
	exponent []int

	initExponent []int

	granularity  []float64
	minMeshSize  []float64
	minFrameSize []float64
}

// NewGMesh builds a GMesh from an initial frame size per coordinate
// (decomposed into mantissa in {1,2,5} and exponent), with optional
// per-coordinate granularity, minMeshSize and minFrameSize floors
// (zero entries mean "no floor").
func NewGMesh(initialFrameSize, granularity, minMeshSize, minFrameSize []float64) *GMesh {
	n := len(initialFrameSize)
	m := &GMesh{
		dim:          n,
		mantissa:     make([]int, n),
		exponent:     make([]int, n),
		initExponent: make([]int, n),
		granularity:  append([]float64(nil), granularity...),
		minMeshSize:  append([]float64(nil), minMeshSize...),
		minFrameSize: append([]float64(nil), minFrameSize...),
	}
	for i, v := range initialFrameSize {
		man, exp := decompose(v)
		m.mantissa[i] = man
		m.exponent[i] = exp
		m.initExponent[i] = exp
	}
	return m
}

// decompose writes v as mantissa*10^exponent with mantissa in
// {1, 2, 5}, the three values the MADS mantissa cycle visits.
func decompose(v float64) (mantissa, exponent int) {
	if v <= 0 {
		return 1, 0
	}
	exp := int(math.Floor(math.Log10(v)))
	base := v / math.Pow(10, float64(exp))
	choices := []int{1, 2, 5}
	best := choices[0]
	bestDist := math.Abs(base - float64(choices[0]))
	for _, c := range choices[1:] {
		if d := math.Abs(base - float64(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, exp
}

func (m *GMesh) Dimension() int { return m.dim }

func (m *GMesh) Granularity(i int) float64 { return m.granularity[i] }

func (m *GMesh) rawFrameSize(i int) float64 {
	return float64(m.mantissa[i]) * math.Pow(10, float64(m.exponent[i]))
}

func (m *GMesh) meshExponent(i int) int {
	if m.exponent[i] < m.initExponent[i] {
		return m.exponent[i]
	}
	return m.initExponent[i]
}

func (m *GMesh) rawMeshSize(i int) float64 {
	return float64(m.mantissa[i]) * math.Pow(10, float64(m.meshExponent(i)))
}

func (m *GMesh) GetDeltaFrameSize(i int) mads.Double {
	return mads.NewDouble(roundUpToGranularity(m.rawFrameSize(i), m.granularity[i]))
}

func (m *GMesh) GetDeltaMeshSize(i int) mads.Double {
	return mads.NewDouble(roundUpToGranularity(m.rawMeshSize(i), m.granularity[i]))
}

// GetRho returns 10^max(0, exponent_i - initExponent_i): the frame has
// only grown relative to the mesh once the exponent drifts above its
// initial value, so rho starts at 1 and grows from there.
func (m *GMesh) GetRho(i int) mads.Double {
	drift := m.exponent[i] - m.initExponent[i]
	if drift < 0 {
		drift = 0
	}
	return mads.NewDouble(math.Pow(10, float64(drift)))
}

func (m *GMesh) ScaleAndProjectOnMesh(i int, l float64) mads.Double {
	rho, _ := m.GetRho(i).Value()
	delta, _ := m.GetDeltaMeshSize(i).Value()
	n := math.Round(rho * l)
	return mads.NewDouble(n * delta)
}

func (m *GMesh) ProjectOnMesh(x, center mads.Point) mads.Point {
	delta := make([]float64, m.dim)
	for i := 0; i < m.dim; i++ {
		delta[i], _ = m.GetDeltaMeshSize(i).Value()
	}
	return projectOnLattice(x, center, delta)
}

// refineMantissa implements the "… 2 -> 1 -> 5 (dec exp) -> 2 -> 1 ->
// …" cycle from spec.md 4.1.
func refineMantissa(mantissa, exponent int) (int, int) {
	switch mantissa {
	case 2:
		return 1, exponent
	case 1:
		return 5, exponent - 1
	default: // 5
		return 2, exponent
	}
}

// enlargeMantissa is refineMantissa run backwards, so that one refine
// followed by one enlarge on the same coordinate is the identity
// (spec.md 8, scenario 6).
func enlargeMantissa(mantissa, exponent int) (int, int) {
	switch mantissa {
	case 1:
		return 2, exponent
	case 5:
		return 1, exponent + 1
	default: // 2
		return 5, exponent
	}
}

func (m *GMesh) RefineDeltaFrameSize() {
	for i := 0; i < m.dim; i++ {
		if m.granularity[i] > 0 && m.atFrameFloor(i) {
			continue
		}
		m.mantissa[i], m.exponent[i] = refineMantissa(m.mantissa[i], m.exponent[i])
	}
}

func (m *GMesh) atFrameFloor(i int) bool {
	if m.minFrameSize[i] <= 0 {
		return false
	}
	frame, _ := m.GetDeltaFrameSize(i).Value()
	return frame <= m.minFrameSize[i]
}

// EnlargeDeltaFrameSize grows each coordinate whose poll step was
// anisotropically significant: |dir_i|/delta_i/rho_i > anisotropyFactor,
// or whose rho has outgrown min(rho)^2 while the exponent is still
// below its initial value. When anisotropic is false, or dir is the
// zero-length Direction (undefined components, as SimplePoll passes
// when it has no poll direction to report), every coordinate grows:
// this is the "no anisotropy" fallback spec.md 9 calls for.
func (m *GMesh) EnlargeDeltaFrameSize(dir mads.Direction, anisotropyFactor float64, anisotropic bool) {
	grow := make([]bool, m.dim)
	haveDir := dir.Coords != nil && len(dir.Coords) == m.dim && dir.Coords.IsComplete()
	if !anisotropic || !haveDir {
		for i := range grow {
			grow[i] = true
		}
	} else {
		minRho := math.Inf(1)
		for i := 0; i < m.dim; i++ {
			r, _ := m.GetRho(i).Value()
			if r < minRho {
				minRho = r
			}
		}
		for i := 0; i < m.dim; i++ {
			delta, _ := m.GetDeltaMeshSize(i).Value()
			rho, _ := m.GetRho(i).Value()
			di, _ := dir.Coords[i].Value()
			ratio := math.Abs(di) / delta / rho
			driftedBelowInit := m.exponent[i] < m.initExponent[i]
			if ratio > anisotropyFactor || (driftedBelowInit && rho > minRho*minRho) {
				grow[i] = true
			}
		}
	}
	for i := 0; i < m.dim; i++ {
		if !grow[i] {
			continue
		}
		m.mantissa[i], m.exponent[i] = enlargeMantissa(m.mantissa[i], m.exponent[i])
	}
}

func (m *GMesh) CheckMeshForStopping() StopReason {
	granular := allGranular(m.granularity)
	for i := 0; i < m.dim; i++ {
		if !granular && m.minMeshSize[i] > 0 {
			if mesh, _ := m.GetDeltaMeshSize(i).Value(); mesh <= m.minMeshSize[i] {
				return MinMeshSizeReached
			}
		}
		if m.minFrameSize[i] > 0 {
			if frame, _ := m.GetDeltaFrameSize(i).Value(); frame <= m.minFrameSize[i] {
				return MinFrameSizeReached
			}
		}
	}
	if granular {
		for i := 0; i < m.dim; i++ {
			frame, _ := m.GetDeltaFrameSize(i).Value()
			if frame <= m.granularity[i] {
				return GranularityReached
			}
		}
	}
	return NotStopped
}
