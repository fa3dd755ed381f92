package mesh

import (
	"math"

	"github.com/madscore/mads"
)

// CSMesh is the Coordinate-Search mesh geometry: a single isotropic
// frame size Delta shared by every coordinate, with mesh size
// delta = Delta/2 and a constant rho of 2.
//
// spec.md 9 flags the original CSMesh::initFrameSizeGranular's
// pow(div*pow(10,-exp),exp) expression as numerically fragile. CSMesh
// does not transliterate it: initial Delta is rounded up to the
// nearest multiple of the largest granularity across coordinates using
// mads.Double.NextMult, an explicit and auditable rule rather than a
// power expression nobody can eyeball for correctness.
type CSMesh struct {
	dim int

	delta float64 // current frame size, shared by every coordinate

	granularity  []float64
	minMeshSize  float64
	minFrameSize float64
}

// NewCSMesh builds a CSMesh with the given initial (isotropic) frame
// size, per-coordinate granularity, and scalar mesh/frame size floors.
func NewCSMesh(initialFrameSize float64, granularity []float64, minMeshSize, minFrameSize float64) *CSMesh {
	m := &CSMesh{
		dim:          len(granularity),
		delta:        initialFrameSize,
		granularity:  append([]float64(nil), granularity...),
		minMeshSize:  minMeshSize,
		minFrameSize: minFrameSize,
	}
	maxGran := 0.0
	for _, g := range granularity {
		if g > maxGran {
			maxGran = g
		}
	}
	if maxGran > 0 {
		m.delta = mads.NewDouble(m.delta).NextMult(maxGran).Float64()
	}
	return m
}

func (m *CSMesh) Dimension() int { return m.dim }

func (m *CSMesh) Granularity(i int) float64 { return m.granularity[i] }

func (m *CSMesh) GetDeltaFrameSize(i int) mads.Double {
	return mads.NewDouble(roundUpToGranularity(m.delta, m.granularity[i]))
}

func (m *CSMesh) GetDeltaMeshSize(i int) mads.Double {
	return mads.NewDouble(roundUpToGranularity(m.delta/2, m.granularity[i]))
}

func (m *CSMesh) GetRho(int) mads.Double { return mads.NewDouble(2) }

func (m *CSMesh) ScaleAndProjectOnMesh(i int, l float64) mads.Double {
	rho, _ := m.GetRho(i).Value()
	delta, _ := m.GetDeltaMeshSize(i).Value()
	n := math.Round(rho * l)
	return mads.NewDouble(n * delta)
}

func (m *CSMesh) ProjectOnMesh(x, center mads.Point) mads.Point {
	delta := make([]float64, m.dim)
	for i := 0; i < m.dim; i++ {
		delta[i], _ = m.GetDeltaMeshSize(i).Value()
	}
	return projectOnLattice(x, center, delta)
}

func (m *CSMesh) RefineDeltaFrameSize() {
	if m.minFrameSize > 0 && m.delta <= m.minFrameSize {
		return
	}
	m.delta /= 2
}

func (m *CSMesh) EnlargeDeltaFrameSize(dir mads.Direction, anisotropyFactor float64, anisotropic bool) {
	// CSMesh is isotropic by construction: anisotropy gating has
	// nothing to act on, every coordinate always shares one Delta.
	m.delta *= 2
}

func (m *CSMesh) CheckMeshForStopping() StopReason {
	granular := allGranular(m.granularity)
	if !granular && m.minMeshSize > 0 {
		if mesh, _ := m.GetDeltaMeshSize(0).Value(); mesh <= m.minMeshSize {
			return MinMeshSizeReached
		}
	}
	if m.minFrameSize > 0 && m.delta <= m.minFrameSize {
		return MinFrameSizeReached
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
