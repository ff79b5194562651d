package problems

import (
	"math"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

// Pendulum is the undamped unit pendulum: dq = p, dp = -sin q.
type Pendulum[T coeff.Analytic[T]] struct{}

func NewPendulum[T coeff.Analytic[T]]() Pendulum[T] {
	return Pendulum[T]{}
}

func (Pendulum[T]) Dim() int { return 2 }

func (Pendulum[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	dx[0].CopyFrom(x[1])
	s := poly.Sin(x[0])
	s.NegAssign()
	dx[1].CopyFrom(s)
}

// Energy is the Hamiltonian p^2/2 + 1 - cos q.
func (Pendulum[T]) Energy(x []float64) float64 {
	return 0.5*x[1]*x[1] + 1 - math.Cos(x[0])
}

// PendulumKernel is the elliptic-integral kernel
// 1/sqrt(1 - k^2 sin^2 t); integrating it over [0, pi/2] yields the
// complete elliptic integral K(k^2), a quarter of the pendulum's
// librational period for k = sin(q0/2). K2 is carried at the
// coefficient type's own precision.
type PendulumKernel[T coeff.Analytic[T]] struct {
	K2 T
}

func (k PendulumKernel[T]) Derivative(x *poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) *poly.Taylor1[T] {
	s := poly.Sin(t)
	s2 := poly.Mul(s, s)
	s2.ScaleAssign(-1)
	for i := 0; i <= s2.Order(); i++ {
		s2.SetCoeff(i, s2.Coeff(i).Mul(k.K2))
	}
	s2.AddConst(k.K2.One())
	return poly.Inv(poly.Sqrt(s2))
}
