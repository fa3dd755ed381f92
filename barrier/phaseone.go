package barrier

import "github.com/madscore/mads"

// phaseOneObjective sums the squares of the positive extreme-barrier
// violations in raw, ignoring every other output. It is the
// substitute objective PhaseOne compares on while active.
func phaseOneObjective(raw mads.ArrayOfDouble, types mads.BBOutputTypeList) mads.Double {
	if len(raw) != len(types) {
		return mads.Undefined()
	}
	sum := 0.0
	for i, t := range types {
		if t != mads.BBOutputEB {
			continue
		}
		v, ok := raw[i].Value()
		if !ok {
			return mads.Undefined()
		}
		if v > 0 {
			sum += v * v
		}
	}
	return mads.NewDouble(sum)
}

// NeedsPhaseOne reports whether the initial point has any EB
// violation, the trigger condition for spec.md 4.2's PhaseOne.
func NeedsPhaseOne(initial *mads.EvalPoint) bool {
	e, ok := initial.Evals[mads.EvalTypeBB]
	if !ok {
		return false
	}
	return e.H.IsPosInf()
}
