package mpoly

import "math"

// TaylorN is a dense multivariate polynomial over float64 truncated at
// its basis' total degree. Operations are value-semantic: they return
// fresh polynomials and never mutate their operands, which lets
// TaylorN act as a coefficient type for the univariate layer.
type TaylorN struct {
	b *Basis
	c []float64
}

// New returns the zero polynomial on basis b.
func New(b *Basis) TaylorN {
	return TaylorN{b: b, c: make([]float64, b.Len())}
}

// Const returns the constant polynomial v.
func Const(b *Basis, v float64) TaylorN {
	p := New(b)
	p.c[0] = v
	return p
}

// Var returns v + x_i, the i-th perturbation variable around center v.
func Var(b *Basis, i int, v float64) TaylorN {
	p := New(b)
	p.c[0] = v
	for m := b.start[1]; m < b.start[2]; m++ {
		if b.exps[m][i] == 1 {
			p.c[m] = 1
			break
		}
	}
	return p
}

// Basis returns the monomial basis.
func (p TaylorN) Basis() *Basis { return p.b }

// Coeff returns the coefficient of monomial i.
func (p TaylorN) Coeff(i int) float64 { return p.c[i] }

// SetCoeff returns a copy with coefficient i replaced.
func (p TaylorN) SetCoeff(i int, v float64) TaylorN {
	q := p.clone()
	q.c[i] = v
	return q
}

// ConstTerm returns the coefficient of the constant monomial.
func (p TaylorN) ConstTerm() float64 { return p.c[0] }

func (p TaylorN) clone() TaylorN {
	q := TaylorN{b: p.b, c: make([]float64, len(p.c))}
	copy(q.c, p.c)
	return q
}

func (p TaylorN) Add(q TaylorN) TaylorN {
	r := p.clone()
	for i := range r.c {
		r.c[i] += q.c[i]
	}
	return r
}

func (p TaylorN) Sub(q TaylorN) TaylorN {
	r := p.clone()
	for i := range r.c {
		r.c[i] -= q.c[i]
	}
	return r
}

func (p TaylorN) Neg() TaylorN {
	r := p.clone()
	for i := range r.c {
		r.c[i] = -r.c[i]
	}
	return r
}

func (p TaylorN) Mul(q TaylorN) TaylorN {
	r := New(p.b)
	prod := p.b.prod
	for i, a := range p.c {
		if a == 0 {
			continue
		}
		row := prod[i]
		for j, bc := range q.c {
			if bc == 0 {
				continue
			}
			if k := row[j]; k >= 0 {
				r.c[k] += a * bc
			}
		}
	}
	return r
}

func (p TaylorN) Scale(s float64) TaylorN {
	r := p.clone()
	for i := range r.c {
		r.c[i] *= s
	}
	return r
}

func (p TaylorN) DivN(n int) TaylorN { return p.Scale(1 / float64(n)) }

// Norm is the largest absolute coefficient.
func (p TaylorN) Norm() float64 {
	m := 0.0
	for _, c := range p.c {
		if a := math.Abs(c); a > m {
			m = a
		}
	}
	return m
}

// Sign reports the sign of the constant term.
func (p TaylorN) Sign() int {
	switch {
	case p.c[0] > 0:
		return 1
	case p.c[0] < 0:
		return -1
	}
	return 0
}

func (p TaylorN) IsZero() bool {
	for _, c := range p.c {
		if c != 0 {
			return false
		}
	}
	return true
}

func (p TaylorN) Zero() TaylorN { return New(p.b) }
func (p TaylorN) One() TaylorN  { return Const(p.b, 1) }

func (p TaylorN) NaN() TaylorN {
	r := New(p.b)
	r.c[0] = math.NaN()
	return r
}

// Eval evaluates the polynomial at the given point.
func (p TaylorN) Eval(x []float64) float64 {
	pw := make([][]float64, p.b.vars)
	for v := range pw {
		pw[v] = make([]float64, p.b.deg+1)
		pw[v][0] = 1
		for d := 1; d <= p.b.deg; d++ {
			pw[v][d] = pw[v][d-1] * x[v]
		}
	}
	s := 0.0
	for i, c := range p.c {
		if c == 0 {
			continue
		}
		term := c
		for v, e := range p.b.exps[i] {
			term *= pw[v][e]
		}
		s += term
	}
	return s
}

// OrderNorm1 returns the 1-norm of the coefficients of total degree k.
func (p TaylorN) OrderNorm1(k int) float64 {
	lo, hi := p.b.OrderRange(k)
	s := 0.0
	for i := lo; i < hi; i++ {
		s += math.Abs(p.c[i])
	}
	return s
}

// VarOrderNorm1 returns, for perturbation variable v, the sum of the
// absolute coefficients of degree-k monomials that contain v, each
// counted at weight one per monomial (the split-criterion series).
func (p TaylorN) VarOrderNorm1(v, k int) float64 {
	lo, hi := p.b.OrderRange(k)
	s := 0.0
	for i := lo; i < hi; i++ {
		if p.b.exps[i][v] > 0 {
			s += math.Abs(p.c[i])
		}
	}
	return s
}

// SubstLinear returns the polynomial with variable j replaced by
// alpha + beta*x_j. The substitution is degree non-increasing, so the
// result lives on the same basis.
func (p TaylorN) SubstLinear(j int, alpha, beta float64) TaylorN {
	b := p.b
	r := New(b)

	apw := make([]float64, b.deg+1)
	bpw := make([]float64, b.deg+1)
	apw[0], bpw[0] = 1, 1
	for d := 1; d <= b.deg; d++ {
		apw[d] = apw[d-1] * alpha
		bpw[d] = bpw[d-1] * beta
	}

	e := make([]int, b.vars)
	for i, c := range p.c {
		if c == 0 {
			continue
		}
		ej := b.exps[i][j]
		if ej == 0 {
			r.c[i] += c
			continue
		}
		copy(e, b.exps[i])
		for m := 0; m <= ej; m++ {
			e[j] = m
			idx := b.indexOf(e)
			r.c[idx] += c * b.binom[ej][m] * apw[ej-m] * bpw[m]
		}
	}
	return r
}

func (b *Basis) indexOf(e []int) int {
	return b.index[expKey(e)]
}
