package coeff

import "math"

// Float is the float64 coefficient type.
type Float float64

func (a Float) Add(b Float) Float { return a + b }
func (a Float) Sub(b Float) Float { return a - b }
func (a Float) Mul(b Float) Float { return a * b }
func (a Float) Neg() Float        { return -a }

func (a Float) Scale(s float64) Float { return a * Float(s) }
func (a Float) DivN(n int) Float      { return a / Float(n) }

func (a Float) Norm() float64 { return math.Abs(float64(a)) }

func (a Float) Sign() int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}
func (a Float) IsZero() bool  { return a == 0 }

func (Float) Zero() Float { return 0 }
func (Float) One() Float  { return 1 }
func (Float) NaN() Float  { return Float(math.NaN()) }

func (a Float) Exp() Float  { return Float(math.Exp(float64(a))) }
func (a Float) Log() Float  { return Float(math.Log(float64(a))) }
func (a Float) Sin() Float  { return Float(math.Sin(float64(a))) }
func (a Float) Cos() Float  { return Float(math.Cos(float64(a))) }
func (a Float) Sqrt() Float { return Float(math.Sqrt(float64(a))) }
func (a Float) Inv() Float  { return 1 / a }

// Floats lifts a float64 slice into Float coefficients.
func Floats(xs []float64) []Float {
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}
