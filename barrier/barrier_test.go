package barrier

import (
	"testing"

	"github.com/madscore/mads"
)

func bbPoint(x float64, raw []float64, types mads.BBOutputTypeList) *mads.EvalPoint {
	ep := mads.NewEvalPoint(mads.PointFromFloat64([]float64{x}))
	e := ep.Eval(mads.EvalTypeBB)
	e.SetOutputs(mads.ArrayOfDoubleFromFloat64(raw), types)
	e.Status = mads.EvalOK
	return ep
}

func TestBarrierPromotesFeasibleIncumbent(t *testing.T) {
	b := New(mads.PosInfinity(), 0.1)
	types := mads.BBOutputTypeList{mads.BBOutputObj}

	p1 := bbPoint(1, []float64{2}, types)
	p2 := bbPoint(2, []float64{1}, types)

	st := b.UpdateWithPoints([]*mads.EvalPoint{p1})
	if st != FullSuccess {
		t.Fatalf("first feasible point should be FullSuccess, got %v", st)
	}
	st = b.UpdateWithPoints([]*mads.EvalPoint{p2})
	if st != FullSuccess {
		t.Fatalf("improving feasible point should be FullSuccess, got %v", st)
	}
	inc := b.GetCurrentIncumbentFeas()
	if f, _ := inc.F().Value(); f != 1 {
		t.Fatalf("incumbent f = %v, want 1", f)
	}
}

func TestBarrierHMaxNonIncreasing(t *testing.T) {
	b := New(mads.PosInfinity(), 0.1)
	types := mads.BBOutputTypeList{mads.BBOutputObj, mads.BBOutputPB}

	p1 := bbPoint(1, []float64{5, 2}, types) // h = 4
	b.UpdateWithPoints([]*mads.EvalPoint{p1})
	h1, _ := b.HMax().Value()

	p2 := bbPoint(2, []float64{5, 1}, types) // h = 1, dominates p1
	b.UpdateWithPoints([]*mads.EvalPoint{p2})
	h2, _ := b.HMax().Value()

	if h2 > h1 {
		t.Fatalf("hMax increased: %v -> %v", h1, h2)
	}
}

func TestBarrierEBForcesInfinity(t *testing.T) {
	types := mads.BBOutputTypeList{mads.BBOutputObj, mads.BBOutputEB, mads.BBOutputPB}
	p := bbPoint(1, []float64{5, 0.1, 3}, types)
	h := p.H()
	if !h.IsPosInf() {
		t.Fatalf("EB violation should force h = +Inf, got %v", h)
	}
}

func TestBarrierInfeasibleDominance(t *testing.T) {
	b := New(mads.PosInfinity(), 0.1)
	types := mads.BBOutputTypeList{mads.BBOutputObj, mads.BBOutputPB}

	worse := bbPoint(1, []float64{5, 2}, types) // f=5 h=4
	better := bbPoint(2, []float64{3, 1}, types) // f=3 h=1, dominates worse

	b.UpdateWithPoints([]*mads.EvalPoint{worse})
	st := b.UpdateWithPoints([]*mads.EvalPoint{better})
	if st != FullSuccess {
		t.Fatalf("dominating infeasible point should be FullSuccess, got %v", st)
	}
	incs := b.InfeasibleIncumbents()
	if len(incs) != 1 {
		t.Fatalf("dominated incumbent should have been dropped, got %d incumbents", len(incs))
	}
}

func TestPhaseOneDeactivatesOnFirstNonPositiveObjective(t *testing.T) {
	b := New(mads.PosInfinity(), 0.1)
	b.ActivatePhaseOne()
	types := mads.BBOutputTypeList{mads.BBOutputObj, mads.BBOutputEB}

	infeasible := bbPoint(0, []float64{0, 0.5}, types) // EB violated, phase1 obj = 0.25
	b.UpdateWithPoints([]*mads.EvalPoint{infeasible})
	if !b.IsPhaseOneActive() {
		t.Fatal("phase one should still be active, objective not yet <= 0")
	}

	feasible := bbPoint(1, []float64{1, -1}, types) // EB satisfied, phase1 obj = 0
	b.UpdateWithPoints([]*mads.EvalPoint{feasible})
	if b.IsPhaseOneActive() {
		t.Fatal("phase one should deactivate once an incumbent reaches phase-one objective <= 0")
	}
}
