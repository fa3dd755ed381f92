// Package mesh implements the discretization of the search space that
// makes MADS provably convergent: per-coordinate frame size Delta and
// mesh size delta, their refine/enlarge transitions, and projection of
// arbitrary points onto the mesh lattice.
package mesh

import (
	"math"

	"github.com/madscore/mads"
	"github.com/sirupsen/logrus"
)

const maxProjectRetries = 10

// StopReason is the outcome of CheckMeshForStopping.
type StopReason uint8

const (
	NotStopped StopReason = iota
	MinMeshSizeReached
	MinFrameSizeReached
	GranularityReached
)

func (r StopReason) String() string {
	switch r {
	case MinMeshSizeReached:
		return "MIN_MESH_SIZE_REACHED"
	case MinFrameSizeReached:
		return "MIN_FRAME_SIZE_REACHED"
	case GranularityReached:
		return "GRANULARITY_REACHED"
	default:
		return "NOT_STOPPED"
	}
}

// Mesh is the shared contract implemented by GMesh (the MADS default)
// and CSMesh (Coordinate Search). Every method is per-coordinate
// except RefineDeltaFrameSize, EnlargeDeltaFrameSize, and
// CheckMeshForStopping, which act on the whole mesh at once.
type Mesh interface {
	Dimension() int

	// GetDeltaFrameSize returns the current frame size (search radius)
	// of coordinate i.
	GetDeltaFrameSize(i int) mads.Double
	// GetDeltaMeshSize returns the current mesh size (lattice spacing)
	// of coordinate i.
	GetDeltaMeshSize(i int) mads.Double
	// GetRho returns the ratio Delta_i/delta_i.
	GetRho(i int) mads.Double
	// Granularity returns the per-coordinate granularity, 0 if
	// continuous.
	Granularity(i int) float64

	// ScaleAndProjectOnMesh scales a unit-norm direction component l
	// onto the mesh: round(rho_i * l) * delta_i.
	ScaleAndProjectOnMesh(i int, l float64) mads.Double
	// ProjectOnMesh snaps x onto the lattice anchored at center.
	ProjectOnMesh(x, center mads.Point) mads.Point

	// RefineDeltaFrameSize shrinks Delta on an unsuccessful iteration.
	RefineDeltaFrameSize()
	// EnlargeDeltaFrameSize grows Delta on a successful iteration,
	// gated per coordinate by anisotropy unless anisotropic is false.
	EnlargeDeltaFrameSize(dir mads.Direction, anisotropyFactor float64, anisotropic bool)

	// CheckMeshForStopping reports whether any stopping floor has been
	// reached.
	CheckMeshForStopping() StopReason
}

// roundUpToGranularity rounds v up to the next multiple of g, a no-op
// if g <= 0.
func roundUpToGranularity(v, g float64) float64 {
	if g <= 0 {
		return v
	}
	return mads.NewDouble(v).NextMult(g).Float64()
}

// projectOnLattice snaps x onto the lattice of spacing delta anchored
// at center: each coordinate is moved to the nearest point of the form
// center_i + n*delta_i for integer n. If a coordinate still isn't a
// clean multiple after maxProjectRetries nudges (a floating point edge
// case, typically delta_i very small relative to the coordinate's
// magnitude), the original coordinate is kept and a warning is logged;
// the projection never aborts.
func projectOnLattice(x, center mads.Point, delta []float64) mads.Point {
	out := make(mads.ArrayOfDouble, len(x.Coords))
	for i := range x.Coords {
		xi, xok := x.Coords[i].Value()
		ci, cok := center.Coords[i].Value()
		if !xok || !cok || delta[i] <= 0 {
			out[i] = x.Coords[i]
			continue
		}
		projected := xi
		ok := false
		for attempt := 0; attempt <= maxProjectRetries; attempt++ {
			n := math.Round((projected - ci) / delta[i])
			candidate := ci + n*delta[i]
			if math.Abs((candidate-ci)/delta[i]-n) < 1e-7 {
				projected = candidate
				ok = true
				break
			}
			// Nudge by a tiny fraction of delta and retry; this is the
			// bounded retry loop the spec calls for against
			// floating-point edge cases near a half-step boundary.
			projected += delta[i] * 1e-9
		}
		if !ok {
			logrus.WithFields(logrus.Fields{
				"coordinate": i,
				"delta":      delta[i],
			}).Warn("mesh: projectOnMesh could not land on lattice after bounded retries, keeping original coordinate")
			out[i] = x.Coords[i]
			continue
		}
		out[i] = mads.NewDouble(projected)
	}
	return mads.Point{Coords: out}
}

// allGranular reports whether every coordinate has positive
// granularity, the special case in which mesh-size stopping is
// disabled because the search is a true lattice search bounded only
// by the evaluation budget.
func allGranular(granularity []float64) bool {
	for _, g := range granularity {
		if g <= 0 {
			return false
		}
	}
	return true
}
