package poll

import (
	"testing"

	"github.com/madscore/mads"
	"github.com/madscore/mads/direction"
	"github.com/madscore/mads/mesh"
	"golang.org/x/exp/rand"
)

func TestGenerateRejectsFrameCenterDuplicate(t *testing.T) {
	m := mesh.NewGMesh([]float64{1, 1}, []float64{0, 0}, []float64{0, 0}, []float64{0, 0})
	center := mads.NewEvalPoint(mads.PointFromFloat64([]float64{0, 0}))
	rng := rand.New(rand.NewSource(1))

	points := Generate(direction.Coordinate{}, m, center, nil, Bounds{}, rng)
	if len(points) != 4 {
		t.Fatalf("Coordinate poll on n=2 should give 4 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Point.Equal(center.Point) {
			t.Fatal("poll produced a trial point equal to the frame center")
		}
		if p.PointFrom != center {
			t.Fatal("trial point's PointFrom should be the frame center")
		}
	}
}

func TestGenerateClampsToBounds(t *testing.T) {
	m := mesh.NewGMesh([]float64{1}, []float64{0}, []float64{0}, []float64{0})
	center := mads.NewEvalPoint(mads.PointFromFloat64([]float64{9}))
	rng := rand.New(rand.NewSource(2))
	bounds := Bounds{Upper: mads.ArrayOfDoubleFromFloat64([]float64{9})}

	points := Generate(direction.Coordinate{}, m, center, nil, bounds, rng)
	for _, p := range points {
		v, _ := p.Point.Coords[0].Value()
		if v > 9 {
			t.Fatalf("trial point %v exceeds upper bound 9", v)
		}
	}
}

func TestGenerateClampsBinaryCoordinateToZeroOrOne(t *testing.T) {
	m := mesh.NewGMesh([]float64{1}, []float64{0}, []float64{0}, []float64{0})
	center := mads.NewEvalPoint(mads.PointFromFloat64([]float64{0.3}))
	rng := rand.New(rand.NewSource(5))
	bounds := Bounds{Types: mads.BBInputTypeList{mads.Binary}}

	points := Generate(direction.Coordinate{}, m, center, nil, bounds, rng)
	if len(points) == 0 {
		t.Fatal("expected at least one trial point")
	}
	for _, p := range points {
		v, _ := p.Point.Coords[0].Value()
		if v != 0 && v != 1 {
			t.Fatalf("binary-tagged coordinate %v not snapped to {0,1}", v)
		}
	}
}

func TestVariableGroupEmbedsZeroOutsideGroup(t *testing.T) {
	m := mesh.NewGMesh([]float64{1, 1, 1}, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{0, 0, 0})
	center := mads.NewEvalPoint(mads.PointFromFloat64([]float64{0, 0, 0}))
	rng := rand.New(rand.NewSource(3))

	groups := []VariableGroup{{1}}
	points := Generate(direction.Coordinate{}, m, center, groups, Bounds{}, rng)
	for _, p := range points {
		v0, _ := p.Point.Coords[0].Value()
		v2, _ := p.Point.Coords[2].Value()
		if v0 != 0 || v2 != 0 {
			t.Fatalf("group {1} poll moved coordinates outside the group: %v", p.Point)
		}
	}
}

func TestNP1NegQuadTwoPass(t *testing.T) {
	m := mesh.NewGMesh([]float64{1, 1, 1}, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{0, 0, 0})
	center := mads.NewEvalPoint(mads.PointFromFloat64([]float64{0, 0, 0}))
	rng := rand.New(rand.NewSource(4))
	gen := direction.NP1NegQuad{}

	first, dirs := GenerateNP1NegQuadFirstPass(gen, m, center, nil, Bounds{}, rng)
	if len(first) == 0 {
		t.Fatal("first pass produced no trial points")
	}
	reduced := make([]mads.Direction, 0, len(dirs)/2)
	for i := 0; i < len(dirs); i += 2 {
		reduced = append(reduced, dirs[i])
	}

	second := GenerateNP1NegQuadSecondPass(gen, m, center, nil, reduced, Bounds{})
	if second == nil {
		t.Fatal("second pass produced no trial point")
	}
	if second.PointFrom != center {
		t.Fatal("second pass trial point should reference the frame center")
	}
}
