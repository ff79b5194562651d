package mpoly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasisEnumeration(t *testing.T) {
	b := NewBasis(2, 3)
	// C(2+3, 3) = 10 monomials
	require.Equal(t, 10, b.Len())

	lo, hi := b.OrderRange(2)
	assert.Equal(t, 3, hi-lo) // x^2, xy, y^2

	// cached per signature
	assert.Same(t, b, NewBasis(2, 3))
}

func TestVarAndEval(t *testing.T) {
	b := NewBasis(2, 4)
	// p = (1 + x) * (2 + y) = 2 + y + 2x + xy
	p := Var(b, 0, 1).Mul(Var(b, 1, 2))
	got := p.Eval([]float64{0.5, -1})
	want := (1 + 0.5) * (2 - 1)
	assert.InDelta(t, want, got, 1e-15)
}

func TestMulTruncatesAtTotalDegree(t *testing.T) {
	b := NewBasis(1, 2)
	x := Var(b, 0, 0)
	x2 := x.Mul(x)
	x3 := x2.Mul(x)
	assert.True(t, x3.IsZero())
}

func TestSubstLinear(t *testing.T) {
	b := NewBasis(2, 3)
	// p(x, y) = (1 + x + y)^2
	s := Var(b, 0, 1).Add(Var(b, 1, 0)).Sub(Const(b, 0))
	p := s.Mul(s)

	// substitute x <- -0.5 + 0.5 x'
	q := p.SubstLinear(0, -0.5, 0.5)
	for _, pt := range [][]float64{{0.3, -0.2}, {-1, 1}, {0.9, 0.4}} {
		want := p.Eval([]float64{-0.5 + 0.5*pt[0], pt[1]})
		got := q.Eval(pt)
		assert.InDelta(t, want, got, 1e-13)
	}
}

func TestAnalyticComposition(t *testing.T) {
	b := NewBasis(2, 8)
	p := Var(b, 0, 0.7) // 0.7 + x
	pt := []float64{0.05, 0}

	assert.InDelta(t, math.Exp(0.75), p.Exp().Eval(pt), 1e-10)
	assert.InDelta(t, math.Sin(0.75), p.Sin().Eval(pt), 1e-10)
	assert.InDelta(t, math.Cos(0.75), p.Cos().Eval(pt), 1e-10)
	assert.InDelta(t, math.Log(0.75), p.Log().Eval(pt), 1e-10)
	assert.InDelta(t, math.Sqrt(0.75), p.Sqrt().Eval(pt), 1e-10)
	assert.InDelta(t, 1/0.75, p.Inv().Eval(pt), 1e-10)
}

func TestOrderNorms(t *testing.T) {
	b := NewBasis(2, 2)
	// p = 1 + 2x - 3y + 4xy
	p := Const(b, 1)
	p = p.SetCoeff(b.LinearIndex(0), 2)
	p = p.SetCoeff(b.LinearIndex(1), -3)
	p = p.SetCoeff(b.indexOf([]int{1, 1}), 4)

	assert.Equal(t, 1.0, p.OrderNorm1(0))
	assert.Equal(t, 5.0, p.OrderNorm1(1))
	assert.Equal(t, 4.0, p.OrderNorm1(2))

	assert.Equal(t, 2.0, p.VarOrderNorm1(0, 1))
	assert.Equal(t, 3.0, p.VarOrderNorm1(1, 1))
	assert.Equal(t, 4.0, p.VarOrderNorm1(0, 2))
}

func TestCoeffContract(t *testing.T) {
	b := NewBasis(2, 2)
	p := Var(b, 0, 2)

	assert.Equal(t, 1, p.Sign())
	assert.Equal(t, -1, p.Neg().Sign())
	assert.Equal(t, 2.0, p.Norm())
	assert.InDelta(t, 1.0, p.DivN(2).ConstTerm(), 1e-15)
	assert.True(t, p.Zero().IsZero())
	assert.Equal(t, 1.0, p.One().ConstTerm())
	assert.True(t, math.IsNaN(p.NaN().ConstTerm()))
}
