package problems

import (
	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

// Lorenz is the Lorenz system with the conventional parameters.
type Lorenz[T coeff.Coeff[T]] struct {
	Sigma float64
	Rho   float64
	Beta  float64
}

func NewLorenz[T coeff.Coeff[T]]() Lorenz[T] {
	return Lorenz[T]{Sigma: 10, Rho: 28, Beta: 8.0 / 3.0}
}

func (Lorenz[T]) Dim() int { return 3 }

func (l Lorenz[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	one := x[0].Const().One()

	// sigma*(y - x)
	r := poly.Sub(x[1], x[0])
	r.ScaleAssign(l.Sigma)
	dx[0].CopyFrom(r)

	// x*(rho - z) - y
	s := x[2].Clone()
	s.NegAssign()
	s.AddConst(one.Scale(l.Rho))
	v := poly.Mul(x[0], s)
	v.SubAssign(x[1])
	dx[1].CopyFrom(v)

	// x*y - beta*z
	w := poly.Mul(x[0], x[1])
	w.SubAssign(poly.Scale(x[2], l.Beta))
	dx[2].CopyFrom(w)
}
