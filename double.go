package mads

import (
	"math"
	"strconv"
)

// kind tags the four states a Double can be in. The zero value is
// undefinedKind so a zero-valued Double is undefined, never zero.
type kind uint8

const (
	undefinedKind kind = iota
	finiteKind
	posInfKind
	negInfKind
)

// Double is a real scalar extended with an undefined sentinel distinct
// from any finite value, and distinct positive/negative infinity
// sentinels. It is a sum type, not a float64 wrapped with NaN checks:
// undefined and infinite values have their own propagation rules,
// spelled out in the arithmetic methods below, and are never conflated
// with NaN.
type Double struct {
	kind kind
	val  float64
}

// Undefined returns the undefined Double.
func Undefined() Double { return Double{kind: undefinedKind} }

// PosInfinity returns positive infinity.
func PosInfinity() Double { return Double{kind: posInfKind} }

// NegInfinity returns negative infinity.
func NegInfinity() Double { return Double{kind: negInfKind} }

// NewDouble wraps a float64. NaN and +/-Inf are mapped onto the
// corresponding sentinel rather than carried as finite values.
func NewDouble(v float64) Double {
	switch {
	case math.IsNaN(v):
		return Undefined()
	case math.IsInf(v, 1):
		return PosInfinity()
	case math.IsInf(v, -1):
		return NegInfinity()
	default:
		return Double{kind: finiteKind, val: v}
	}
}

// IsDefined reports whether d holds a finite value.
func (d Double) IsDefined() bool { return d.kind == finiteKind }

// IsInf reports whether d is positive or negative infinity.
func (d Double) IsInf() bool { return d.kind == posInfKind || d.kind == negInfKind }

// IsPosInf reports whether d is positive infinity.
func (d Double) IsPosInf() bool { return d.kind == posInfKind }

// IsNegInf reports whether d is negative infinity.
func (d Double) IsNegInf() bool { return d.kind == negInfKind }

// Value returns the finite value of d and true, or (0, false) if d is
// undefined or infinite.
func (d Double) Value() (float64, bool) {
	if d.kind != finiteKind {
		return 0, false
	}
	return d.val, true
}

// Float64 returns a float64 approximation of d, using math.Inf for the
// infinite sentinels and math.NaN for undefined. It exists for
// interop with float64-only APIs (formatting, gonum/mat); arithmetic
// within this package should use the Double methods instead so that
// NaN is never mistaken for Undefined.
func (d Double) Float64() float64 {
	switch d.kind {
	case finiteKind:
		return d.val
	case posInfKind:
		return math.Inf(1)
	case negInfKind:
		return math.Inf(-1)
	default:
		return math.NaN()
	}
}

func (d Double) String() string {
	switch d.kind {
	case finiteKind:
		return strconv.FormatFloat(d.val, 'g', -1, 64)
	case posInfKind:
		return "+INF"
	case negInfKind:
		return "-INF"
	default:
		return "-"
	}
}

// Add returns d+o under the Cayley table: Undefined is absorbing,
// opposite infinities sum to Undefined (indeterminate), and a finite
// operand is absorbed by an infinite one.
func (d Double) Add(o Double) Double {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return Undefined()
	}
	if (d.kind == posInfKind && o.kind == negInfKind) || (d.kind == negInfKind && o.kind == posInfKind) {
		return Undefined()
	}
	if d.kind == posInfKind || o.kind == posInfKind {
		return PosInfinity()
	}
	if d.kind == negInfKind || o.kind == negInfKind {
		return NegInfinity()
	}
	return NewDouble(d.val + o.val)
}

// Neg returns -d.
func (d Double) Neg() Double {
	switch d.kind {
	case finiteKind:
		return NewDouble(-d.val)
	case posInfKind:
		return NegInfinity()
	case negInfKind:
		return PosInfinity()
	default:
		return Undefined()
	}
}

// Sub returns d-o.
func (d Double) Sub(o Double) Double { return d.Add(o.Neg()) }

// Mul returns d*o. Zero times an infinity is Undefined (indeterminate),
// matching the conservative propagation the rest of the package relies
// on.
func (d Double) Mul(o Double) Double {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return Undefined()
	}
	if d.kind == finiteKind && o.kind == finiteKind {
		return NewDouble(d.val * o.val)
	}
	dZero := d.kind == finiteKind && d.val == 0
	oZero := o.kind == finiteKind && o.val == 0
	if dZero || oZero {
		return Undefined()
	}
	neg := d.sign() * o.sign()
	if neg < 0 {
		return NegInfinity()
	}
	return PosInfinity()
}

func (d Double) sign() int {
	switch d.kind {
	case posInfKind:
		return 1
	case negInfKind:
		return -1
	case finiteKind:
		if d.val < 0 {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Div returns d/o. Division by zero and infinity-by-infinity are
// Undefined.
func (d Double) Div(o Double) Double {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return Undefined()
	}
	if o.kind == finiteKind && o.val == 0 {
		return Undefined()
	}
	if d.kind != finiteKind && o.kind != finiteKind {
		return Undefined()
	}
	if o.kind != finiteKind {
		return NewDouble(0)
	}
	if d.kind != finiteKind {
		neg := d.sign() * o.sign()
		if neg < 0 {
			return NegInfinity()
		}
		return PosInfinity()
	}
	return NewDouble(d.val / o.val)
}

// Min returns the lesser of d and o, propagating Undefined.
func (d Double) Min(o Double) Double {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return Undefined()
	}
	if d.Less(o) {
		return d
	}
	return o
}

// Max returns the greater of d and o, propagating Undefined.
func (d Double) Max(o Double) Double {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return Undefined()
	}
	if d.Less(o) {
		return o
	}
	return d
}

// Less reports whether d < o. Undefined compares false against
// everything, including itself; this is deliberately different from
// NaN's comparison rules only in that Equal also always reports false
// for Undefined, so callers cannot mistake "incomparable" for "equal".
func (d Double) Less(o Double) bool {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return false
	}
	if d.kind == o.kind && d.kind != finiteKind {
		return false
	}
	rank := func(x Double) float64 {
		switch x.kind {
		case negInfKind:
			return math.Inf(-1)
		case posInfKind:
			return math.Inf(1)
		default:
			return x.val
		}
	}
	return rank(d) < rank(o)
}

// LessEq reports whether d <= o.
func (d Double) LessEq(o Double) bool {
	return d.Less(o) || d.Equal(o)
}

// Equal reports whether d and o hold the same sentinel or the same
// finite value. Two Undefined values are not Equal: undefined is never
// equal to anything, including itself.
func (d Double) Equal(o Double) bool {
	if d.kind == undefinedKind || o.kind == undefinedKind {
		return false
	}
	if d.kind != o.kind {
		return false
	}
	if d.kind == finiteKind {
		return d.val == o.val
	}
	return true
}

// Abs returns the absolute value of d.
func (d Double) Abs() Double {
	switch d.kind {
	case finiteKind:
		return NewDouble(math.Abs(d.val))
	case posInfKind, negInfKind:
		return PosInfinity()
	default:
		return Undefined()
	}
}

// IsInteger reports whether d is finite and has no fractional part.
func (d Double) IsInteger() bool {
	return d.kind == finiteKind && d.val == math.Trunc(d.val)
}

// IsMultipleOf reports whether d is an integer multiple of delta.
// Undefined and infinite values are never a multiple of anything.
func (d Double) IsMultipleOf(delta float64) bool {
	if d.kind != finiteKind {
		return false
	}
	if delta == 0 {
		return d.val == 0
	}
	ratio := d.val / delta
	return math.Abs(ratio-math.Round(ratio)) < 1e-9*math.Max(1, math.Abs(ratio))
}

// RoundMult rounds d to the nearest integer multiple of delta, ties
// away from zero. Undefined and infinite sentinels pass through
// unchanged: there is no nearest multiple of an infinity.
func (d Double) RoundMult(delta float64) Double {
	if d.kind != finiteKind || delta == 0 {
		return d
	}
	return NewDouble(math.Round(d.val/delta) * delta)
}

// NextMult rounds d up (toward positive infinity) to the next integer
// multiple of delta greater than or equal to d.
func (d Double) NextMult(delta float64) Double {
	if d.kind != finiteKind || delta == 0 {
		return d
	}
	return NewDouble(math.Ceil(d.val/delta) * delta)
}
