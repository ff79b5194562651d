package poly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/taylor/internal/coeff"
)

func fromCoeffs(cs ...float64) *Taylor1[coeff.Float] {
	p := NewConst(coeff.Float(cs[0]), len(cs)-1)
	for k := 1; k < len(cs); k++ {
		p.SetCoeff(k, coeff.Float(cs[k]))
	}
	return p
}

func TestMulTruncates(t *testing.T) {
	a := fromCoeffs(1, 2, 3)
	b := fromCoeffs(2, 1, 0)
	r := Mul(a, b)

	// (1+2t+3t^2)(2+t) = 2 + 5t + 8t^2 + 3t^3, truncated at order 2
	assert.Equal(t, coeff.Float(2), r.Coeff(0))
	assert.Equal(t, coeff.Float(5), r.Coeff(1))
	assert.Equal(t, coeff.Float(8), r.Coeff(2))
}

func TestEvalHorner(t *testing.T) {
	p := fromCoeffs(1, -2, 0.5, 3)
	dt := 0.3
	want := 1 - 2*dt + 0.5*dt*dt + 3*dt*dt*dt
	got := float64(p.Eval(coeff.Float(dt)))
	assert.InDelta(t, want, got, 1e-15)
}

func TestNewVarAndReset(t *testing.T) {
	p := NewVar(coeff.Float(2.5), 4)
	assert.Equal(t, coeff.Float(2.5), p.Const())
	assert.Equal(t, coeff.Float(1), p.Coeff(1))

	p.Reset(7)
	assert.Equal(t, coeff.Float(7), p.Const())
	for k := 1; k <= 4; k++ {
		assert.True(t, p.Coeff(k).IsZero())
	}
}

func TestExpMatchesScalar(t *testing.T) {
	// exp of the jet of x(t) = 0.4 + t around small dt
	x := NewVar(coeff.Float(0.4), 25)
	e := Exp(x)
	for _, dt := range []float64{0, 0.1, -0.2, 0.5} {
		want := math.Exp(0.4 + dt)
		got := float64(e.Eval(coeff.Float(dt)))
		assert.InDelta(t, want, got, 1e-12, "dt=%v", dt)
	}
}

func TestSinCosMatchScalar(t *testing.T) {
	x := NewVar(coeff.Float(1.1), 25)
	s := NewConst(coeff.Float(0), 25)
	c := NewConst(coeff.Float(0), 25)
	SinCosInto(s, c, x)
	for _, dt := range []float64{0, 0.2, -0.3} {
		assert.InDelta(t, math.Sin(1.1+dt), float64(s.Eval(coeff.Float(dt))), 1e-12)
		assert.InDelta(t, math.Cos(1.1+dt), float64(c.Eval(coeff.Float(dt))), 1e-12)
	}
}

func TestLogSqrtDivInverse(t *testing.T) {
	x := NewVar(coeff.Float(2.0), 20)

	l := Log(x)
	assert.InDelta(t, math.Log(2.3), float64(l.Eval(coeff.Float(0.3))), 1e-12)

	r := Sqrt(x)
	assert.InDelta(t, math.Sqrt(2.3), float64(r.Eval(coeff.Float(0.3))), 1e-12)

	// x / x = 1
	q := Div(x, x)
	assert.InDelta(t, 1, float64(q.Eval(coeff.Float(0.25))), 1e-12)

	inv := Inv(x)
	assert.InDelta(t, 1/2.3, float64(inv.Eval(coeff.Float(0.3))), 1e-12)
}

func TestPow(t *testing.T) {
	x := NewVar(coeff.Float(1.5), 20)

	p3 := PowN(x, 3)
	assert.InDelta(t, math.Pow(1.7, 3), float64(p3.Eval(coeff.Float(0.2))), 1e-11)

	ph := Pow(x, -1.5)
	assert.InDelta(t, math.Pow(1.7, -1.5), float64(ph.Eval(coeff.Float(0.2))), 1e-11)
}

func TestExpRecurrenceWithBigCoefficients(t *testing.T) {
	prec := uint(128)
	x := NewVar(coeff.NewBig(0.25, prec), 15)
	e := Exp(x)
	got := e.Const()
	want := coeff.NewBig(0.25, prec).Exp()
	require.Less(t, got.Sub(want).Norm(), 1e-30)
}

func TestMaxNormAndIsZero(t *testing.T) {
	p := fromCoeffs(0, -4, 2)
	assert.Equal(t, 4.0, p.MaxNorm())
	assert.False(t, p.IsZero())
	p.Reset(0)
	assert.True(t, p.IsZero())
}
