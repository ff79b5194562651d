package coeff

import (
	"math"
	"math/big"
)

// Big is an arbitrary-precision coefficient backed by math/big.Float.
// The precision is fixed at construction and inherited by every
// derived value. big.Float has no NaN, so NaN() returns +Inf.
type Big struct {
	x *big.Float
}

// NewBig lifts a float64 into a Big with the given mantissa precision
// in bits.
func NewBig(v float64, prec uint) Big {
	return Big{x: new(big.Float).SetPrec(prec).SetFloat64(v)}
}

// ParseBig parses a decimal literal at the given precision.
func ParseBig(s string, prec uint) (Big, bool) {
	x, ok := new(big.Float).SetPrec(prec).SetString(s)
	if !ok {
		return Big{}, false
	}
	return Big{x: x}, true
}

// FromBigFloat wraps an existing big.Float value.
func FromBigFloat(x *big.Float) Big {
	return Big{x: new(big.Float).SetPrec(x.Prec()).Set(x)}
}

// Bigs lifts a float64 slice at the given precision.
func Bigs(xs []float64, prec uint) []Big {
	out := make([]Big, len(xs))
	for i, x := range xs {
		out[i] = NewBig(x, prec)
	}
	return out
}

// Float64 rounds to the nearest float64.
func (a Big) Float64() float64 {
	f, _ := a.x.Float64()
	return f
}

// Prec reports the mantissa precision in bits.
func (a Big) Prec() uint { return a.x.Prec() }

func (a Big) fresh() *big.Float { return new(big.Float).SetPrec(a.x.Prec()) }

func (a Big) Add(b Big) Big { return Big{x: a.fresh().Add(a.x, b.x)} }
func (a Big) Sub(b Big) Big { return Big{x: a.fresh().Sub(a.x, b.x)} }
func (a Big) Mul(b Big) Big { return Big{x: a.fresh().Mul(a.x, b.x)} }
func (a Big) Neg() Big      { return Big{x: a.fresh().Neg(a.x)} }

func (a Big) Scale(s float64) Big {
	t := a.fresh().SetFloat64(s)
	return Big{x: t.Mul(t, a.x)}
}

func (a Big) DivN(n int) Big {
	t := a.fresh().SetInt64(int64(n))
	return Big{x: t.Quo(a.x, t)}
}

func (a Big) Norm() float64 {
	f, _ := new(big.Float).Abs(a.x).Float64()
	return f
}

func (a Big) Sign() int   { return a.x.Sign() }
func (a Big) IsZero() bool { return a.x.Sign() == 0 }

func (a Big) Zero() Big { return Big{x: a.fresh()} }
func (a Big) One() Big  { return Big{x: a.fresh().SetInt64(1)} }
func (a Big) NaN() Big  { return Big{x: a.fresh().SetInf(false)} }

func (a Big) Exp() Big  { return Big{x: bigExp(a.x)} }
func (a Big) Log() Big  { return Big{x: bigLog(a.x)} }
func (a Big) Sin() Big  { return Big{x: bigSin(a.x)} }
func (a Big) Cos() Big  { return Big{x: bigCos(a.x)} }
func (a Big) Sqrt() Big { return Big{x: a.fresh().Sqrt(a.x)} }

func (a Big) Inv() Big {
	one := a.fresh().SetInt64(1)
	return Big{x: one.Quo(one, a.x)}
}

// Cmp compares a and b.
func (a Big) Cmp(b Big) int { return a.x.Cmp(b.x) }

func (a Big) String() string { return a.x.Text('g', int(float64(a.x.Prec())*math.Log10(2))) }
