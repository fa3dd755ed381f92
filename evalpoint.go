package mads

// EvalStatus is the state of one Eval within its lifecycle. The zero
// value is NotStarted.
type EvalStatus uint8

const (
	NotStarted EvalStatus = iota
	InProgress
	EvalOK
	Failed
	EvalError
	UserRejected
	ConsHOver
)

func (s EvalStatus) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case InProgress:
		return "IN_PROGRESS"
	case EvalOK:
		return "OK"
	case Failed:
		return "FAILED"
	case EvalError:
		return "ERROR"
	case UserRejected:
		return "USER_REJECTED"
	case ConsHOver:
		return "CONS_H_OVER"
	default:
		return "UNKNOWN"
	}
}

// EvalType identifies one of the evaluator tiers an EvalPoint may
// carry a record for.
type EvalType uint8

const (
	EvalTypeBB EvalType = iota
	EvalTypeSurrogate
	EvalTypeModel
)

// Eval is the evaluation record for one point under one evaluator
// tier: the raw blackbox output vector, the f/h it was reduced to, its
// lifecycle Status, and the output-type list it was interpreted under.
// SetOutputs sets BBOutputs and recomputes f and h from them together;
// F and H are exported, so assigning them directly bypasses that
// recomputation and can leave them out of sync with BBOutputs.
type Eval struct {
	BBOutputs ArrayOfDouble
	F         Double
	H         Double
	Status    EvalStatus
	Types     BBOutputTypeList
}

// NewEval returns an Eval in NotStarted status with no outputs.
func NewEval() *Eval {
	return &Eval{F: Undefined(), H: Undefined(), Status: NotStarted}
}

// SetOutputs records the raw blackbox output vector and the
// output-type list it was produced under, and recomputes F and H from
// them. Status is left to the caller: SetOutputs only updates the
// numeric content of the Eval.
func (e *Eval) SetOutputs(raw ArrayOfDouble, types BBOutputTypeList) {
	e.BBOutputs = raw
	e.Types = types
	e.F, e.H = ComputeFH(raw, types)
}

// IsFeasible reports whether e.H is defined and equal to zero under
// e.Types.
func (e *Eval) IsFeasible() bool {
	return IsFeasible(e.H)
}

// EvalPoint is a Point plus one Eval per evaluator tier that has been
// attempted on it. EvalPoint is the unit of currency between the
// cache, the barrier, and the evaluator queue: all three hold pointers
// to the same EvalPoint rather than copies, so an update made by the
// evaluator is immediately visible to the barrier and the cache.
type EvalPoint struct {
	Point     Point
	Evals     map[EvalType]*Eval
	PointFrom *EvalPoint // back-reference used as an evaluator ordering hint
	Tag       int        // generation-order tag, for stable tie-breaking
}

// NewEvalPoint returns an EvalPoint at p with no Eval recorded yet.
func NewEvalPoint(p Point) *EvalPoint {
	return &EvalPoint{Point: p, Evals: make(map[EvalType]*Eval)}
}

// Eval returns the Eval for the given tier, creating it in NotStarted
// status if absent.
func (ep *EvalPoint) Eval(t EvalType) *Eval {
	if e, ok := ep.Evals[t]; ok {
		return e
	}
	e := NewEval()
	ep.Evals[t] = e
	return e
}

// HasEval reports whether tier t has been attempted at all.
func (ep *EvalPoint) HasEval(t EvalType) bool {
	_, ok := ep.Evals[t]
	return ok
}

// IsFeasible reports whether the blackbox-tier Eval is feasible.
func (ep *EvalPoint) IsFeasible() bool {
	e, ok := ep.Evals[EvalTypeBB]
	return ok && e.IsFeasible()
}

// F returns the blackbox-tier objective value, or Undefined if no
// blackbox Eval has been recorded.
func (ep *EvalPoint) F() Double {
	e, ok := ep.Evals[EvalTypeBB]
	if !ok {
		return Undefined()
	}
	return e.F
}

// H returns the blackbox-tier constraint violation, or Undefined if no
// blackbox Eval has been recorded.
func (ep *EvalPoint) H() Double {
	e, ok := ep.Evals[EvalTypeBB]
	if !ok {
		return Undefined()
	}
	return e.H
}

func (ep *EvalPoint) String() string {
	s := ep.Point.String()
	if e, ok := ep.Evals[EvalTypeBB]; ok {
		s += " " + e.BBOutputs.String()
	}
	return s
}
