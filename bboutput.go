package mads

// BBOutputType classifies one column of a blackbox output vector.
type BBOutputType uint8

const (
	// BBOutputObj marks an objective column. Several columns may be
	// marked OBJ; multi-objective Pareto maintenance is a driver
	// concern outside this package, so ComputeFH folds multiple OBJ
	// columns down to the first one for the scalar f the barrier
	// compares on.
	BBOutputObj BBOutputType = iota
	// BBOutputEB marks an extreme-barrier constraint: any positive
	// value makes h = +Inf regardless of every other constraint.
	BBOutputEB
	// BBOutputPB marks a progressive-barrier constraint: positive
	// violations are squared and summed into h.
	BBOutputPB
	// BBOutputRPB marks a "revealing" progressive-barrier constraint.
	// It aggregates into h exactly like BBOutputPB; the distinct tag
	// exists so that a revealing-poll driver (out of scope here) can
	// tell RPB and PB outputs apart without this package knowing why.
	BBOutputRPB
	// BBOutputInfo marks an information-only output, ignored by
	// ComputeFH.
	BBOutputInfo
)

func (t BBOutputType) String() string {
	switch t {
	case BBOutputObj:
		return "OBJ"
	case BBOutputEB:
		return "EB"
	case BBOutputPB:
		return "PB"
	case BBOutputRPB:
		return "RPB"
	case BBOutputInfo:
		return "EXTRA_O"
	default:
		return "OBJ"
	}
}

// ParseBBOutputType parses one BB_OUTPUT_TYPE token, defaulting to
// BBOutputInfo for anything it doesn't recognize (NOMAD treats
// unrecognized tags the same way).
func ParseBBOutputType(s string) BBOutputType {
	switch s {
	case "OBJ":
		return BBOutputObj
	case "EB":
		return BBOutputEB
	case "PB":
		return BBOutputPB
	case "RPB":
		return BBOutputRPB
	default:
		return BBOutputInfo
	}
}

// BBOutputTypeList is the per-output-column interpretation of a
// blackbox output vector.
type BBOutputTypeList []BBOutputType

// ComputeFH recomputes the objective f and the aggregated constraint
// violation h from a raw blackbox output vector under the given
// output-type list, per spec: any BBOutputEB column greater than zero
// forces h to +Inf regardless of PB/RPB columns; otherwise h is the
// sum of squares of the positive PB/RPB violations; f is the first OBJ
// column. ComputeFH returns (Undefined, Undefined) if raw and types
// have mismatched lengths or raw contains an undefined OBJ/EB/PB
// column, since f/h cannot be trusted to reflect a partial output.
func ComputeFH(raw ArrayOfDouble, types BBOutputTypeList) (f, h Double) {
	if len(raw) != len(types) {
		return Undefined(), Undefined()
	}
	f = Undefined()
	haveObj := false
	haveEBViolation := false
	sumSq := 0.0
	for i, t := range types {
		v := raw[i]
		switch t {
		case BBOutputObj:
			if !v.IsDefined() {
				return Undefined(), Undefined()
			}
			if !haveObj {
				f = v
				haveObj = true
			}
		case BBOutputEB:
			if !v.IsDefined() {
				return Undefined(), Undefined()
			}
			fv, _ := v.Value()
			if fv > 0 {
				haveEBViolation = true
			}
		case BBOutputPB, BBOutputRPB:
			if !v.IsDefined() {
				return Undefined(), Undefined()
			}
			fv, _ := v.Value()
			if fv > 0 {
				sumSq += fv * fv
			}
		}
	}
	if haveEBViolation {
		return f, PosInfinity()
	}
	return f, NewDouble(sumSq)
}

// IsFeasible reports whether h represents zero constraint violation.
func IsFeasible(h Double) bool {
	v, ok := h.Value()
	return ok && v == 0
}
