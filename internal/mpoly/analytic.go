package mpoly

import "math"

// Elementary functions of a truncated multivariate polynomial,
// computed by composing the scalar function's Taylor expansion around
// the constant term with the nilpotent remainder q = p - p(0). The
// remainder has zero constant term, so q^(deg+1) vanishes under
// truncation and deg+1 series terms are exact.

// compose evaluates sum_n d[n] * q^n by Horner's scheme, where
// d[n] = f^(n)(a)/n! and a is p's constant term.
func compose(p TaylorN, d []float64) TaylorN {
	q := p.SetCoeff(0, 0)
	n := len(d) - 1
	r := Const(p.b, d[n])
	for k := n - 1; k >= 0; k-- {
		r = r.Mul(q)
		r.c[0] += d[k]
	}
	return r
}

func (p TaylorN) Exp() TaylorN {
	a := math.Exp(p.c[0])
	d := make([]float64, p.b.deg+1)
	fact := 1.0
	for n := range d {
		if n > 0 {
			fact *= float64(n)
		}
		d[n] = a / fact
	}
	return compose(p, d)
}

func (p TaylorN) Log() TaylorN {
	a := p.c[0]
	d := make([]float64, p.b.deg+1)
	d[0] = math.Log(a)
	apow := a
	for n := 1; n < len(d); n++ {
		sign := 1.0
		if n%2 == 0 {
			sign = -1
		}
		d[n] = sign / (float64(n) * apow)
		apow *= a
	}
	return compose(p, d)
}

func (p TaylorN) Sin() TaylorN {
	a := p.c[0]
	d := make([]float64, p.b.deg+1)
	fact := 1.0
	for n := range d {
		if n > 0 {
			fact *= float64(n)
		}
		d[n] = math.Sin(a+float64(n)*math.Pi/2) / fact
	}
	return compose(p, d)
}

func (p TaylorN) Cos() TaylorN {
	a := p.c[0]
	d := make([]float64, p.b.deg+1)
	fact := 1.0
	for n := range d {
		if n > 0 {
			fact *= float64(n)
		}
		d[n] = math.Cos(a+float64(n)*math.Pi/2) / fact
	}
	return compose(p, d)
}

func (p TaylorN) Sqrt() TaylorN {
	a := p.c[0]
	d := make([]float64, p.b.deg+1)
	d[0] = math.Sqrt(a)
	for n := 1; n < len(d); n++ {
		d[n] = d[n-1] * (0.5 - float64(n-1)) / (float64(n) * a)
	}
	return compose(p, d)
}

func (p TaylorN) Inv() TaylorN {
	a := p.c[0]
	d := make([]float64, p.b.deg+1)
	sign := 1.0
	apow := a
	for n := range d {
		d[n] = sign / apow
		sign = -sign
		apow *= a
	}
	return compose(p, d)
}
