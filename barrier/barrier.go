// Package barrier implements the progressive barrier: the
// constraint-handling structure that tracks the current feasible and
// infeasible incumbents under a monotonically shrinking threshold hMax
// on aggregated constraint violation.
package barrier

import (
	"sort"

	"github.com/madscore/mads"
)

// SuccessType is the outcome of comparing a newly evaluated point
// against a reference point.
type SuccessType uint8

const (
	Unsuccessful SuccessType = iota
	PartialSuccess
	FullSuccess
)

func (s SuccessType) String() string {
	switch s {
	case FullSuccess:
		return "FULL_SUCCESS"
	case PartialSuccess:
		return "PARTIAL_SUCCESS"
	default:
		return "UNSUCCESSFUL"
	}
}

// Max returns the more successful of s and o.
func (s SuccessType) Max(o SuccessType) SuccessType {
	if o > s {
		return o
	}
	return s
}

// Barrier holds the current feasible incumbents (ordered by f
// ascending) and the current infeasible incumbents with h <= HMax
// (ordered lexicographically by (h ascending, f ascending)), plus the
// HMax threshold itself. Incumbents are shared *mads.EvalPoint
// pointers, the same ones the cache holds: Barrier never copies an
// EvalPoint, it only reorders references to them.
type Barrier struct {
	feas []*mads.EvalPoint
	inf  []*mads.EvalPoint

	hMax mads.Double

	// rho gates which of {feasible, infeasible} incumbent is the
	// primary frame center: infeasible is primary when rho >= 0, both
	// incumbents exist, and fFeas - rho > fInf.
	rho float64

	phaseOneActive bool
}

// New returns an empty Barrier with the given initial hMax and rho.
func New(hMax0 mads.Double, rho float64) *Barrier {
	return &Barrier{hMax: hMax0, rho: rho}
}

// HMax returns the current threshold.
func (b *Barrier) HMax() mads.Double { return b.hMax }

// IsPhaseOneActive reports whether the barrier is substituting the sum
// of squared EB violations for the real objective, per spec.md 4.2.
func (b *Barrier) IsPhaseOneActive() bool { return b.phaseOneActive }

// ActivatePhaseOne switches the barrier into PhaseOne mode: comparisons
// use the sum of squared EB violations and ignore PB/RPB constraints,
// until some incumbent's phase-one objective reaches zero or below.
func (b *Barrier) ActivatePhaseOne() { b.phaseOneActive = true }

// GetCurrentIncumbentFeas returns the best known feasible incumbent,
// or nil if none has been found yet.
func (b *Barrier) GetCurrentIncumbentFeas() *mads.EvalPoint {
	if len(b.feas) == 0 {
		return nil
	}
	return b.feas[0]
}

// GetCurrentIncumbentInf returns the best known infeasible incumbent,
// or nil if none is currently held.
func (b *Barrier) GetCurrentIncumbentInf() *mads.EvalPoint {
	if len(b.inf) == 0 {
		return nil
	}
	return b.inf[0]
}

// InfeasibleIncumbents returns the full non-dominated infeasible front,
// ordered lexicographically by (h, f). Poll methods use this for a
// secondary frame center beyond GetCurrentIncumbentInf.
func (b *Barrier) InfeasibleIncumbents() []*mads.EvalPoint {
	return append([]*mads.EvalPoint(nil), b.inf...)
}

// PrimaryFrameCenter applies the rho rule from spec.md 4.4: if rho>=0
// and both a feasible and an infeasible incumbent exist and
// fFeas - rho > fInf, the infeasible incumbent is primary, otherwise
// the feasible one is (falling back to whichever of the two exists).
func (b *Barrier) PrimaryFrameCenter() *mads.EvalPoint {
	feas := b.GetCurrentIncumbentFeas()
	inf := b.GetCurrentIncumbentInf()
	switch {
	case feas == nil:
		return inf
	case inf == nil:
		return feas
	case b.rho >= 0:
		fFeas, _ := feas.F().Value()
		fInf, _ := inf.F().Value()
		if fFeas-b.rho > fInf {
			return inf
		}
		return feas
	default:
		return feas
	}
}

// SecondaryFrameCenter returns the other of {feasible, infeasible}
// incumbent from PrimaryFrameCenter, or nil if there is no second one.
func (b *Barrier) SecondaryFrameCenter() *mads.EvalPoint {
	feas := b.GetCurrentIncumbentFeas()
	inf := b.GetCurrentIncumbentInf()
	primary := b.PrimaryFrameCenter()
	if primary == feas {
		return inf
	}
	return feas
}

// objective returns the value comparisons should use for p: the real
// blackbox objective normally, or the phase-one sum-of-squared-EB
// objective while PhaseOne is active.
func (b *Barrier) objective(p *mads.EvalPoint) mads.Double {
	e, ok := p.Evals[mads.EvalTypeBB]
	if !ok {
		return mads.Undefined()
	}
	if b.phaseOneActive {
		return phaseOneObjective(e.BBOutputs, e.Types)
	}
	return e.F
}

// violation returns the constraint violation comparisons should use
// for p: h normally, or 0 while PhaseOne is active (PB/RPB constraints
// are ignored during phase one).
func (b *Barrier) violation(p *mads.EvalPoint) mads.Double {
	if b.phaseOneActive {
		return mads.NewDouble(0)
	}
	e, ok := p.Evals[mads.EvalTypeBB]
	if !ok {
		return mads.Undefined()
	}
	return e.H
}

func (b *Barrier) feasibleUnder(p *mads.EvalPoint) bool {
	return mads.IsFeasible(b.violation(p))
}

// ComputeSuccessType compares newP against ref following spec.md 4.2's
// dominance rules: a feasible point beats any infeasible reference;
// between two feasible points, smaller f wins; between two infeasible
// points, componentwise dominance in (f, h) is FULL, improvement in
// exactly one of the two is PARTIAL.
func (b *Barrier) ComputeSuccessType(newP, ref *mads.EvalPoint) SuccessType {
	if ref == nil {
		if newP == nil {
			return Unsuccessful
		}
		return FullSuccess
	}
	if newP == nil {
		return Unsuccessful
	}
	newFeas := b.feasibleUnder(newP)
	refFeas := b.feasibleUnder(ref)

	switch {
	case newFeas && refFeas:
		nf, nok := b.objective(newP).Value()
		rf, rok := b.objective(ref).Value()
		if !nok || !rok {
			return Unsuccessful
		}
		if nf < rf {
			return FullSuccess
		}
		return Unsuccessful
	case newFeas && !refFeas:
		return FullSuccess
	case !newFeas && refFeas:
		return Unsuccessful
	default: // both infeasible
		nf, nfok := b.objective(newP).Value()
		nh, nhok := b.violation(newP).Value()
		rf, rfok := b.objective(ref).Value()
		rh, rhok := b.violation(ref).Value()
		if !nfok || !nhok || !rfok || !rhok {
			return Unsuccessful
		}
		fBetter := nf < rf
		hBetter := nh < rh
		fWorse := nf > rf
		hWorse := nh > rh
		switch {
		case nf <= rf && nh <= rh && (fBetter || hBetter):
			return FullSuccess
		case fBetter && hWorse, hBetter && fWorse:
			return PartialSuccess
		default:
			return Unsuccessful
		}
	}
}

// UpdateWithPoints integrates a batch of evaluated points into the
// incumbent lists, updates HMax, and returns the best SuccessType
// achieved by any point in the batch relative to the incumbents that
// were current before the batch was applied.
func (b *Barrier) UpdateWithPoints(points []*mads.EvalPoint) SuccessType {
	refFeas := b.GetCurrentIncumbentFeas()
	refInf := b.GetCurrentIncumbentInf()

	overall := Unsuccessful
	for _, p := range points {
		e, ok := p.Evals[mads.EvalTypeBB]
		if !ok || e.Status != mads.EvalOK {
			continue
		}
		if !e.H.IsDefined() && !e.H.IsPosInf() {
			continue
		}

		if b.phaseOneActive {
			obj := phaseOneObjective(e.BBOutputs, e.Types)
			if v, ok := obj.Value(); ok && v <= 0 {
				b.phaseOneActive = false
				b.purgePhaseOneFeasible()
			}
		}

		// While PhaseOne is active every point is "feasible" under
		// violation() (which is pinned to 0), so it lands in feas;
		// feas is still sorted by the real f, not the phase-one
		// objective, which only matters for incumbent ordering during
		// PhaseOne itself and self-corrects once PhaseOne deactivates.
		feasible := b.feasibleUnder(p)
		var ref *mads.EvalPoint
		if feasible {
			ref = refFeas
		} else {
			if refFeas != nil {
				ref = refFeas
			} else {
				ref = refInf
			}
		}
		st := b.ComputeSuccessType(p, ref)
		overall = overall.Max(st)

		if feasible {
			b.insertFeasible(p)
		} else {
			hv, ok := b.violation(p).Value()
			if !ok {
				continue // +Inf (EB violated): never an incumbent
			}
			hMaxVal, hasCeil := b.hMax.Value()
			if hasCeil && hv > hMaxVal {
				continue
			}
			b.insertInfeasible(p)
		}
	}

	b.recomputeHMax()
	return overall
}

// purgePhaseOneFeasible drops feasible-list entries admitted only
// under PhaseOne's pinned-feasible rule (violation() forced to 0)
// whose real H is not zero, once PhaseOne deactivates and real
// feasibility resumes. Without this, a point evaluated while PhaseOne
// was active but never actually satisfying the EB constraints would
// stay in feas forever and could outrank a genuinely feasible point
// tied on f.
func (b *Barrier) purgePhaseOneFeasible() {
	kept := b.feas[:0:0]
	for _, p := range b.feas {
		if mads.IsFeasible(p.H()) {
			kept = append(kept, p)
		}
	}
	b.feas = kept
}

func (b *Barrier) insertFeasible(p *mads.EvalPoint) {
	for _, existing := range b.feas {
		if existing.Point.Equal(p.Point) {
			return
		}
	}
	b.feas = append(b.feas, p)
	sort.SliceStable(b.feas, func(i, j int) bool {
		fi, _ := b.feas[i].F().Value()
		fj, _ := b.feas[j].F().Value()
		return fi < fj
	})
}

// insertInfeasible adds p to the infeasible front, dropping any
// existing incumbent p dominates and refusing insertion if p is itself
// dominated by an existing incumbent.
func (b *Barrier) insertInfeasible(p *mads.EvalPoint) {
	pf, _ := p.F().Value()
	ph, _ := p.H().Value()

	kept := b.inf[:0:0]
	for _, q := range b.inf {
		if q.Point.Equal(p.Point) {
			return
		}
		qf, _ := q.F().Value()
		qh, _ := q.H().Value()
		if qf <= pf && qh <= ph && (qf < pf || qh < ph) {
			return // p is dominated by an existing incumbent
		}
		if pf <= qf && ph <= qh && (pf < qf || ph < qh) {
			continue // q is dominated by p, drop it
		}
		kept = append(kept, q)
	}
	kept = append(kept, p)
	sort.SliceStable(kept, func(i, j int) bool {
		hi, _ := kept[i].H().Value()
		hj, _ := kept[j].H().Value()
		if hi != hj {
			return hi < hj
		}
		fi, _ := kept[i].F().Value()
		fj, _ := kept[j].F().Value()
		return fi < fj
	})
	b.inf = kept
}

// recomputeHMax resets HMax to the h of the worst retained infeasible
// incumbent. Because UpdateWithPoints already refuses points with
// h > the old HMax, this can only hold HMax steady or shrink it,
// satisfying the monotonic non-increase invariant.
func (b *Barrier) recomputeHMax() {
	if len(b.inf) == 0 {
		return
	}
	worst := mads.NewDouble(0)
	for _, p := range b.inf {
		h := p.H()
		if h.Less(worst) {
			continue
		}
		worst = h
	}
	if worst.Less(b.hMax) {
		b.hMax = worst
	}
}
