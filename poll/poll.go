// Package poll assembles trial points from a frame center and a
// direction.Generator: scaling unit directions onto the mesh,
// embedding variable-group subspace directions into the full
// dimension, snapping to bounds, and reprojecting onto the lattice.
package poll

import (
	"github.com/madscore/mads"
	"github.com/madscore/mads/direction"
	"github.com/madscore/mads/mesh"
	"golang.org/x/exp/rand"
)

// VariableGroup is a set of coordinate indices that a generator treats
// as its own subspace: directions are generated at len(group)
// dimension and embedded with zero elsewhere in the full point.
type VariableGroup []int

// Bounds holds the optional per-coordinate lower and upper bounds used
// to snap trial points back into the feasible box, plus the optional
// per-coordinate BBInputType list driving the extra domain restriction
// spec.md 4.1's granularity rule describes for binary variables: a
// nil Types, or an entry left at mads.Continuous, applies no
// restriction beyond Lower/Upper. A nil slice, or an Undefined Lower/
// Upper entry, means unbounded on that side.
type Bounds struct {
	Lower mads.ArrayOfDouble
	Upper mads.ArrayOfDouble
	Types mads.BBInputTypeList
}

func (b Bounds) clamp(i int, v float64) float64 {
	if b.Lower != nil && i < len(b.Lower) {
		if lo, ok := b.Lower[i].Value(); ok && v < lo {
			v = lo
		}
	}
	if b.Upper != nil && i < len(b.Upper) {
		if hi, ok := b.Upper[i].Value(); ok && v > hi {
			v = hi
		}
	}
	if b.Types.At(i) == mads.Binary {
		if v < 0.5 {
			v = 0
		} else {
			v = 1
		}
	}
	return v
}

// fullDimensionGroups returns a single group spanning every coordinate
// when groups is empty, the default when the problem has no declared
// variable groups.
func fullDimensionGroups(groups []VariableGroup, n int) []VariableGroup {
	if len(groups) > 0 {
		return groups
	}
	full := make(VariableGroup, n)
	for i := range full {
		full[i] = i
	}
	return []VariableGroup{full}
}

// embed scatters a len(group)-dimensional direction into a full
// n-dimensional one, zero outside group.
func embed(d mads.Direction, group VariableGroup, n int) mads.Direction {
	out := make(mads.ArrayOfDouble, n)
	for i := range out {
		out[i] = mads.NewDouble(0)
	}
	for i, idx := range group {
		out[idx] = d.Coords[i]
	}
	return mads.NewDirection(out)
}

// scaleOnMesh applies msh.ScaleAndProjectOnMesh componentwise to a
// full-dimension unit direction, producing the mesh-scaled
// displacement spec.md 4.4 adds to the frame center.
func scaleOnMesh(msh mesh.Mesh, d mads.Direction) mads.Direction {
	out := make(mads.ArrayOfDouble, len(d.Coords))
	for i, c := range d.Coords {
		l, ok := c.Value()
		if !ok {
			out[i] = mads.Undefined()
			continue
		}
		out[i] = msh.ScaleAndProjectOnMesh(i, l)
	}
	return mads.NewDirection(out)
}

// snapToBounds clamps a candidate point into bounds and reprojects it
// onto the mesh lattice anchored at center, since clamping alone can
// move a coordinate off the lattice. Binary coordinates are rounded to
// {0,1} again after the reprojection.
func snapToBounds(candidate, center mads.Point, b Bounds, msh mesh.Mesh) mads.Point {
	out := make(mads.ArrayOfDouble, len(candidate.Coords))
	changed := false
	for i, c := range candidate.Coords {
		v, ok := c.Value()
		if !ok {
			out[i] = c
			continue
		}
		clamped := b.clamp(i, v)
		if clamped != v {
			changed = true
		}
		out[i] = mads.NewDouble(clamped)
	}
	snapped := mads.Point{Coords: out}
	if !changed {
		return snapped
	}
	projected := msh.ProjectOnMesh(snapped, center)
	for i, c := range projected.Coords {
		if v, ok := c.Value(); ok && b.Types.At(i) == mads.Binary {
			projected.Coords[i] = mads.NewDouble(b.clamp(i, v))
		}
	}
	return projected
}

// GenerateNP1NegQuadFirstPass builds the first-pass 2n trial points for
// the NP1NegQuad generator: direction.NP1NegQuad does not implement
// Generator because it needs its second direction computed from the
// first pass's evaluation results, so it is driven through these two
// functions instead of the uniform Generate path. The i-th returned
// direction is the one that produced the i-th returned point;
// directions whose candidate collapsed onto center are dropped with it.
func GenerateNP1NegQuadFirstPass(gen direction.NP1NegQuad, msh mesh.Mesh, center *mads.EvalPoint, group VariableGroup, b Bounds, rng *rand.Rand) ([]*mads.EvalPoint, []mads.Direction) {
	n := msh.Dimension()
	if len(group) == 0 {
		group = fullDimensionGroups(nil, n)[0]
	}
	dirs := gen.FirstPass(len(group), rng)
	points := make([]*mads.EvalPoint, 0, len(dirs))
	kept := make([]mads.Direction, 0, len(dirs))
	for _, d := range dirs {
		full := embed(d, group, n)
		scaled := scaleOnMesh(msh, full)
		candidate := center.Point.Add(scaled)
		candidate = snapToBounds(candidate, center.Point, b, msh)
		if candidate.Equal(center.Point) {
			continue
		}
		ep := mads.NewEvalPoint(candidate)
		ep.PointFrom = center
		points = append(points, ep)
		kept = append(kept, d)
	}
	return points, kept
}

// GenerateNP1NegQuadSecondPass completes the basis with the NEG
// direction and returns the single extra trial point.
func GenerateNP1NegQuadSecondPass(gen direction.NP1NegQuad, msh mesh.Mesh, center *mads.EvalPoint, group VariableGroup, basis []mads.Direction, b Bounds) *mads.EvalPoint {
	n := msh.Dimension()
	if len(group) == 0 {
		group = fullDimensionGroups(nil, n)[0]
	}
	final := gen.NegDirection(basis)
	full := embed(final, group, n)
	scaled := scaleOnMesh(msh, full)
	candidate := center.Point.Add(scaled)
	candidate = snapToBounds(candidate, center.Point, b, msh)
	if candidate.Equal(center.Point) {
		return nil
	}
	ep := mads.NewEvalPoint(candidate)
	ep.PointFrom = center
	return ep
}

// Generate builds the trial points for one poll around center: one
// call to gen per variable group, each direction scaled onto msh,
// added to center, clamped into bounds, and reprojected. Candidates
// that collapse back onto center are dropped (a poll step never
// re-evaluates its own frame center).
func Generate(gen direction.Generator, msh mesh.Mesh, center *mads.EvalPoint, groups []VariableGroup, b Bounds, rng *rand.Rand) []*mads.EvalPoint {
	n := msh.Dimension()
	out := make([]*mads.EvalPoint, 0)
	for _, group := range fullDimensionGroups(groups, n) {
		dirs := gen.Generate(len(group), rng)
		for _, d := range dirs {
			full := embed(d, group, n)
			scaled := scaleOnMesh(msh, full)
			candidate := center.Point.Add(scaled)
			candidate = snapToBounds(candidate, center.Point, b, msh)
			if candidate.Equal(center.Point) {
				continue
			}
			ep := mads.NewEvalPoint(candidate)
			ep.PointFrom = center
			out = append(out, ep)
		}
	}
	return out
}
