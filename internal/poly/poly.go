// Package poly implements truncated univariate power series in one
// variable (time) over a generic coefficient type. Arithmetic
// truncates at the fixed order chosen at construction; the integrator
// core relies on that truncation for the Taylor recurrence.
package poly

import "github.com/san-kum/taylor/internal/coeff"

// Taylor1 is a truncated polynomial c0 + c1*t + ... + cN*t^N with
// fixed order N. The order never changes after construction.
type Taylor1[T coeff.Coeff[T]] struct {
	c []T
}

// NewConst builds a polynomial with constant term x and zero higher
// coefficients.
func NewConst[T coeff.Coeff[T]](x T, order int) *Taylor1[T] {
	p := &Taylor1[T]{c: make([]T, order+1)}
	p.c[0] = x
	z := x.Zero()
	for k := 1; k <= order; k++ {
		p.c[k] = z
	}
	return p
}

// NewVar builds x + t, the independent variable shifted to x.
func NewVar[T coeff.Coeff[T]](x T, order int) *Taylor1[T] {
	p := NewConst(x, order)
	if order >= 1 {
		p.c[1] = x.One()
	}
	return p
}

func (p *Taylor1[T]) Order() int { return len(p.c) - 1 }

func (p *Taylor1[T]) Coeff(k int) T       { return p.c[k] }
func (p *Taylor1[T]) SetCoeff(k int, v T) { p.c[k] = v }

// Const reads the constant term, the current state value.
func (p *Taylor1[T]) Const() T     { return p.c[0] }
func (p *Taylor1[T]) SetConst(v T) { p.c[0] = v }

// Reset sets the constant term to v and zeroes every higher
// coefficient.
func (p *Taylor1[T]) Reset(v T) {
	p.c[0] = v
	z := v.Zero()
	for k := 1; k < len(p.c); k++ {
		p.c[k] = z
	}
}

func (p *Taylor1[T]) Clone() *Taylor1[T] {
	q := &Taylor1[T]{c: make([]T, len(p.c))}
	copy(q.c, p.c)
	return q
}

func (p *Taylor1[T]) CopyFrom(q *Taylor1[T]) {
	copy(p.c, q.c)
}

func (p *Taylor1[T]) AddAssign(q *Taylor1[T]) {
	for k := range p.c {
		p.c[k] = p.c[k].Add(q.c[k])
	}
}

func (p *Taylor1[T]) SubAssign(q *Taylor1[T]) {
	for k := range p.c {
		p.c[k] = p.c[k].Sub(q.c[k])
	}
}

func (p *Taylor1[T]) NegAssign() {
	for k := range p.c {
		p.c[k] = p.c[k].Neg()
	}
}

func (p *Taylor1[T]) ScaleAssign(s float64) {
	for k := range p.c {
		p.c[k] = p.c[k].Scale(s)
	}
}

// MulInto stores the truncated product a*b in dst. dst must not alias
// a or b; all three must share the same order.
func MulInto[T coeff.Coeff[T]](dst, a, b *Taylor1[T]) {
	for k := range dst.c {
		s := a.c[0].Mul(b.c[k])
		for i := 1; i <= k; i++ {
			s = s.Add(a.c[i].Mul(b.c[k-i]))
		}
		dst.c[k] = s
	}
}

// Add returns a+b as a new polynomial.
func Add[T coeff.Coeff[T]](a, b *Taylor1[T]) *Taylor1[T] {
	r := a.Clone()
	r.AddAssign(b)
	return r
}

// Sub returns a-b as a new polynomial.
func Sub[T coeff.Coeff[T]](a, b *Taylor1[T]) *Taylor1[T] {
	r := a.Clone()
	r.SubAssign(b)
	return r
}

// Mul returns the truncated product as a new polynomial.
func Mul[T coeff.Coeff[T]](a, b *Taylor1[T]) *Taylor1[T] {
	r := NewConst(a.c[0].Zero(), a.Order())
	MulInto(r, a, b)
	return r
}

// Scale returns s*a as a new polynomial.
func Scale[T coeff.Coeff[T]](a *Taylor1[T], s float64) *Taylor1[T] {
	r := a.Clone()
	r.ScaleAssign(s)
	return r
}

// AddConst adds v to the constant term.
func (p *Taylor1[T]) AddConst(v T) {
	p.c[0] = p.c[0].Add(v)
}

// Eval evaluates the polynomial at dt by Horner's scheme.
func (p *Taylor1[T]) Eval(dt T) T {
	n := len(p.c) - 1
	r := p.c[n]
	for k := n - 1; k >= 0; k-- {
		r = r.Mul(dt).Add(p.c[k])
	}
	return r
}

// MaxNorm is the largest coefficient norm, the infinity norm over the
// coefficient vector.
func (p *Taylor1[T]) MaxNorm() float64 {
	m := 0.0
	for _, c := range p.c {
		if n := c.Norm(); n > m {
			m = n
		}
	}
	return m
}

// IsZero reports whether every coefficient is zero.
func (p *Taylor1[T]) IsZero() bool {
	for _, c := range p.c {
		if !c.IsZero() {
			return false
		}
	}
	return true
}
