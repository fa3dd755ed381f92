package iteration

import (
	"context"
	"math"
	"testing"

	"github.com/madscore/mads"
	"github.com/madscore/mads/barrier"
	"github.com/madscore/mads/blackbox"
	"github.com/madscore/mads/cache"
	"github.com/madscore/mads/direction"
	"github.com/madscore/mads/evalcontrol"
	"github.com/madscore/mads/mesh"
	"golang.org/x/exp/rand"
)

func TestOptimizeConvergesOnSphere(t *testing.T) {
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	eval := blackbox.FuncEvaluator{
		Types: types,
		Func: func(x []float64) []float64 {
			return []float64{(x[0]-1)*(x[0]-1) + (x[1]+2)*(x[1]+2)}
		},
	}
	c := cache.New()
	control := evalcontrol.New(eval, c, evalcontrol.Options{Workers: 2, BBMaxBlockSize: 8})

	m := mesh.NewGMesh([]float64{1, 1}, []float64{0, 0}, []float64{1e-6, 1e-6}, []float64{0, 0})
	b := barrier.New(mads.PosInfinity(), 0.1)

	start := mads.NewEvalPoint(mads.PointFromFloat64([]float64{0, 0}))
	if err := eval.Evaluate(context.Background(), start, mads.EvalTypeBB); err != nil {
		t.Fatalf("initial evaluation failed: %v", err)
	}

	d := &Driver{
		Mesh:             m,
		Barrier:          b,
		Generator:        direction.Ortho2N{},
		Control:          control,
		Rng:              rand.New(rand.NewSource(7)),
		AnisotropyFactor: 0.1,
		Anisotropic:      false,
	}
	d.SeedInitial(start)

	stopReason := d.Optimize(500)
	t.Logf("stopped after %d iterations, reason=%v", d.K(), stopReason)

	inc := b.GetCurrentIncumbentFeas()
	if inc == nil {
		t.Fatal("no feasible incumbent found")
	}
	x, _ := inc.Point.Coords[0].Value()
	y, _ := inc.Point.Coords[1].Value()
	if math.Hypot(x-1, y+2) > 0.5 {
		t.Fatalf("incumbent (%v, %v) did not converge near (1, -2)", x, y)
	}
}

func TestRunIterationAdvancesK(t *testing.T) {
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	eval := blackbox.FuncEvaluator{Types: types, Func: func(x []float64) []float64 { return []float64{x[0] * x[0]} }}
	c := cache.New()
	control := evalcontrol.New(eval, c, evalcontrol.Options{Workers: 1, BBMaxBlockSize: 4})
	m := mesh.NewGMesh([]float64{1}, []float64{0}, []float64{0}, []float64{0})
	b := barrier.New(mads.PosInfinity(), 0.1)

	start := mads.NewEvalPoint(mads.PointFromFloat64([]float64{5}))
	eval.Evaluate(context.Background(), start, mads.EvalTypeBB)

	d := &Driver{Mesh: m, Barrier: b, Generator: direction.Coordinate{}, Control: control, Rng: rand.New(rand.NewSource(1))}
	d.SeedInitial(start)
	_, _ = d.RunIteration(-1)
	if d.K() != 1 {
		t.Fatalf("K() = %d, want 1", d.K())
	}
	if len(d.Records()) != 1 {
		t.Fatalf("expected 1 record, got %d", len(d.Records()))
	}
}

// TestSeedInitialActivatesPhaseOneForEBInfeasibleStart exercises
// spec.md 8 scenario 3: a single EB constraint x1+x2>=1 (expressed as
// 1-x1-x2 > 0 violating the constraint) with x0=(0,0) starts with
// h=+Inf, which UpdateWithPoints alone would silently drop, leaving
// PrimaryFrameCenter nil forever. SeedInitial must detect this and
// activate PhaseOne so the driver has something to poll around.
func TestSeedInitialActivatesPhaseOneForEBInfeasibleStart(t *testing.T) {
	types := mads.BBOutputTypeList{mads.BBOutputObj, mads.BBOutputEB}
	eval := blackbox.FuncEvaluator{
		Types: types,
		Func: func(x []float64) []float64 {
			return []float64{x[0] * x[0], 1 - x[0] - x[1]}
		},
	}
	c := cache.New()
	control := evalcontrol.New(eval, c, evalcontrol.Options{Workers: 2, BBMaxBlockSize: 8})
	m := mesh.NewGMesh([]float64{1, 1}, []float64{0, 0}, []float64{1e-6, 1e-6}, []float64{0, 0})
	b := barrier.New(mads.PosInfinity(), 0.1)

	start := mads.NewEvalPoint(mads.PointFromFloat64([]float64{0, 0}))
	if err := eval.Evaluate(context.Background(), start, mads.EvalTypeBB); err != nil {
		t.Fatalf("initial evaluation failed: %v", err)
	}

	d := &Driver{
		Mesh:             m,
		Barrier:          b,
		Generator:        direction.Ortho2N{},
		Control:          control,
		Rng:              rand.New(rand.NewSource(11)),
		AnisotropyFactor: 0.1,
	}
	d.SeedInitial(start)
	if !b.IsPhaseOneActive() {
		t.Fatal("SeedInitial should have activated PhaseOne for an EB-infeasible start")
	}

	d.Optimize(200)

	inc := b.GetCurrentIncumbentFeas()
	if inc == nil {
		t.Fatal("no feasible incumbent found; PhaseOne never resolved")
	}
	if h, _ := inc.H().Value(); h != 0 {
		t.Fatalf("final incumbent h = %v, want 0", h)
	}
	if b.IsPhaseOneActive() {
		t.Fatal("PhaseOne should have deactivated once a feasible incumbent was found")
	}
}

// TestNP1NegQuadReachableThroughDriver confirms the two-pass NEG rule
// generator is actually driven by the Driver (via negQuadPollStep),
// not just exercised directly by poll package tests.
func TestNP1NegQuadReachableThroughDriver(t *testing.T) {
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	eval := blackbox.FuncEvaluator{
		Types: types,
		Func: func(x []float64) []float64 {
			return []float64{x[0]*x[0] + x[1]*x[1]}
		},
	}
	c := cache.New()
	control := evalcontrol.New(eval, c, evalcontrol.Options{Workers: 2, BBMaxBlockSize: 8})
	m := mesh.NewGMesh([]float64{1, 1}, []float64{0, 0}, []float64{1e-6, 1e-6}, []float64{0, 0})
	b := barrier.New(mads.PosInfinity(), 0.1)

	start := mads.NewEvalPoint(mads.PointFromFloat64([]float64{3, 3}))
	eval.Evaluate(context.Background(), start, mads.EvalTypeBB)

	d := &Driver{
		Mesh:      m,
		Barrier:   b,
		Generator: direction.NP1NegQuad{},
		Control:   control,
		Rng:       rand.New(rand.NewSource(13)),
	}
	d.SeedInitial(start)

	for i := 0; i < 100; i++ {
		_, reason := d.RunIteration(-1)
		if reason != mesh.NotStopped {
			break
		}
	}

	inc := b.GetCurrentIncumbentFeas()
	if inc == nil {
		t.Fatal("no feasible incumbent found")
	}
	startF, _ := start.F().Value()
	incF, _ := inc.F().Value()
	if incF >= startF {
		t.Fatalf("NP1NegQuad poll made no progress: start f=%v, incumbent f=%v", startF, incF)
	}
}
