package poly

import "github.com/san-kum/taylor/internal/coeff"

// Elementary functions of a truncated series, computed by the
// classical recurrences relating the derivative of f(a(t)) to the
// derivatives of a. Each Into variant writes into dst, which must not
// alias the input.

// ExpInto computes dst = exp(a).
func ExpInto[T coeff.Analytic[T]](dst, a *Taylor1[T]) {
	n := a.Order()
	dst.c[0] = a.c[0].Exp()
	for k := 1; k <= n; k++ {
		s := a.c[0].Zero()
		for j := 1; j <= k; j++ {
			s = s.Add(a.c[j].Scale(float64(j)).Mul(dst.c[k-j]))
		}
		dst.c[k] = s.DivN(k)
	}
}

// LogInto computes dst = log(a); a must have nonzero constant term.
func LogInto[T coeff.Analytic[T]](dst, a *Taylor1[T]) {
	n := a.Order()
	dst.c[0] = a.c[0].Log()
	inv0 := a.c[0].Inv()
	for k := 1; k <= n; k++ {
		s := a.c[0].Zero()
		for j := 1; j < k; j++ {
			s = s.Add(dst.c[j].Scale(float64(j)).Mul(a.c[k-j]))
		}
		dst.c[k] = a.c[k].Sub(s.DivN(k)).Mul(inv0)
	}
}

// SinCosInto computes sin(a) and cos(a) together; the two recurrences
// are coupled.
func SinCosInto[T coeff.Analytic[T]](sn, cs, a *Taylor1[T]) {
	n := a.Order()
	sn.c[0] = a.c[0].Sin()
	cs.c[0] = a.c[0].Cos()
	for k := 1; k <= n; k++ {
		s := a.c[0].Zero()
		c := a.c[0].Zero()
		for j := 1; j <= k; j++ {
			aj := a.c[j].Scale(float64(j))
			s = s.Add(aj.Mul(cs.c[k-j]))
			c = c.Add(aj.Mul(sn.c[k-j]))
		}
		sn.c[k] = s.DivN(k)
		cs.c[k] = c.DivN(k).Neg()
	}
}

// SqrtInto computes dst = sqrt(a); a must have positive constant term.
func SqrtInto[T coeff.Analytic[T]](dst, a *Taylor1[T]) {
	n := a.Order()
	dst.c[0] = a.c[0].Sqrt()
	inv2r0 := dst.c[0].Scale(2).Inv()
	for k := 1; k <= n; k++ {
		s := a.c[0].Zero()
		for j := 1; j < k; j++ {
			s = s.Add(dst.c[j].Mul(dst.c[k-j]))
		}
		dst.c[k] = a.c[k].Sub(s).Mul(inv2r0)
	}
}

// DivInto computes dst = a/b; b must have nonzero constant term. dst
// must not alias a or b.
func DivInto[T coeff.Analytic[T]](dst, a, b *Taylor1[T]) {
	n := a.Order()
	inv0 := b.c[0].Inv()
	for k := 0; k <= n; k++ {
		s := a.c[k]
		for j := 0; j < k; j++ {
			s = s.Sub(dst.c[j].Mul(b.c[k-j]))
		}
		dst.c[k] = s.Mul(inv0)
	}
}

func Exp[T coeff.Analytic[T]](a *Taylor1[T]) *Taylor1[T] {
	r := NewConst(a.c[0].Zero(), a.Order())
	ExpInto(r, a)
	return r
}

func Log[T coeff.Analytic[T]](a *Taylor1[T]) *Taylor1[T] {
	r := NewConst(a.c[0].Zero(), a.Order())
	LogInto(r, a)
	return r
}

func Sin[T coeff.Analytic[T]](a *Taylor1[T]) *Taylor1[T] {
	s := NewConst(a.c[0].Zero(), a.Order())
	c := NewConst(a.c[0].Zero(), a.Order())
	SinCosInto(s, c, a)
	return s
}

func Cos[T coeff.Analytic[T]](a *Taylor1[T]) *Taylor1[T] {
	s := NewConst(a.c[0].Zero(), a.Order())
	c := NewConst(a.c[0].Zero(), a.Order())
	SinCosInto(s, c, a)
	return c
}

func Sqrt[T coeff.Analytic[T]](a *Taylor1[T]) *Taylor1[T] {
	r := NewConst(a.c[0].Zero(), a.Order())
	SqrtInto(r, a)
	return r
}

func Div[T coeff.Analytic[T]](a, b *Taylor1[T]) *Taylor1[T] {
	r := NewConst(a.c[0].Zero(), a.Order())
	DivInto(r, a, b)
	return r
}

// Inv returns 1/a.
func Inv[T coeff.Analytic[T]](a *Taylor1[T]) *Taylor1[T] {
	one := NewConst(a.c[0].One(), a.Order())
	return Div(one, a)
}

// PowN returns a**n for n >= 0 by repeated truncated multiplication.
func PowN[T coeff.Coeff[T]](a *Taylor1[T], n int) *Taylor1[T] {
	r := NewConst(a.c[0].One(), a.Order())
	base := a.Clone()
	tmp := NewConst(a.c[0].Zero(), a.Order())
	for n > 0 {
		if n&1 == 1 {
			MulInto(tmp, r, base)
			r, tmp = tmp, r
		}
		n >>= 1
		if n > 0 {
			MulInto(tmp, base, base)
			base, tmp = tmp, base
		}
	}
	return r
}

// Pow returns a**r for real r via exp(r*log a).
func Pow[T coeff.Analytic[T]](a *Taylor1[T], r float64) *Taylor1[T] {
	l := Log(a)
	l.ScaleAssign(r)
	return Exp(l)
}
