package problems

import (
	"math"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

// Kepler is the planar two-body problem in Cartesian coordinates,
// state (q1, q2, p1, p2) with unit gravitational parameter:
//
//	dq = p, dp = -q / |q|^3
type Kepler[T coeff.Analytic[T]] struct{}

func NewKepler[T coeff.Analytic[T]]() Kepler[T] {
	return Kepler[T]{}
}

func (Kepler[T]) Dim() int { return 4 }

func (Kepler[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	q1, q2 := x[0], x[1]
	dx[0].CopyFrom(x[2])
	dx[1].CopyFrom(x[3])

	r2 := poly.Mul(q1, q1)
	r2.AddAssign(poly.Mul(q2, q2))
	r3inv := poly.Inv(poly.Mul(r2, poly.Sqrt(r2)))

	a1 := poly.Mul(q1, r3inv)
	a1.NegAssign()
	dx[2].CopyFrom(a1)

	a2 := poly.Mul(q2, r3inv)
	a2.NegAssign()
	dx[3].CopyFrom(a2)
}

// Energy is p^2/2 - 1/|q|.
func (Kepler[T]) Energy(x []float64) float64 {
	r := math.Hypot(x[0], x[1])
	return 0.5*(x[2]*x[2]+x[3]*x[3]) - 1/r
}
