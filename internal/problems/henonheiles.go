package problems

import (
	"math"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/lyap"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

// HenonHeiles is the classical Henon-Heiles system with canonical
// coefficients, state (q1, q2, p1, p2):
//
//	dq1 = p1, dq2 = p2
//	dp1 = -q1 - 2 q1 q2
//	dp2 = -q2 - q1^2 + q2^2
type HenonHeiles[T coeff.Coeff[T]] struct{}

func NewHenonHeiles[T coeff.Coeff[T]]() HenonHeiles[T] {
	return HenonHeiles[T]{}
}

func (HenonHeiles[T]) Dim() int { return 4 }

func (HenonHeiles[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	q1, q2 := x[0], x[1]
	dx[0].CopyFrom(x[2])
	dx[1].CopyFrom(x[3])

	r := poly.Mul(q1, q2)
	r.ScaleAssign(2)
	r.AddAssign(q1)
	r.NegAssign()
	dx[2].CopyFrom(r)

	s := poly.Mul(q2, q2)
	s.SubAssign(poly.Mul(q1, q1))
	s.SubAssign(q2)
	dx[3].CopyFrom(s)
}

// Energy is the Hamiltonian
// (p1^2+p2^2)/2 + (q1^2+q2^2)/2 + q1^2 q2 - q2^3/3.
func (HenonHeiles[T]) Energy(x []float64) float64 {
	q1, q2, p1, p2 := x[0], x[1], x[2], x[3]
	return 0.5*(p1*p1+p2*p2) + 0.5*(q1*q1+q2*q2) + q1*q1*q2 - q2*q2*q2/3
}

// HenonHeilesJacobian fills the stability matrix
//
//	[ 0          0         1 0 ]
//	[ 0          0         0 1 ]
//	[ -1-2q2     -2q1      0 0 ]
//	[ -2q1       -1+2q2    0 0 ]
//
// evaluated on the current jet.
func HenonHeilesJacobian(jac [][]*poly.Taylor1[coeff.Float], x []*poly.Taylor1[coeff.Float], p taylor.Params, t *poly.Taylor1[coeff.Float]) {
	q1, q2 := x[0], x[1]
	zero := coeff.Float(0)
	one := coeff.Float(1)

	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			jac[a][b].Reset(zero)
		}
	}
	jac[0][2].Reset(one)
	jac[1][3].Reset(one)

	v := q2.Clone()
	v.ScaleAssign(2)
	v.AddConst(one)
	v.NegAssign()
	jac[2][0].CopyFrom(v)

	w := q1.Clone()
	w.ScaleAssign(-2)
	jac[2][1].CopyFrom(w)
	jac[3][0].CopyFrom(w)

	u := q2.Clone()
	u.ScaleAssign(2)
	u.AddConst(one.Neg())
	jac[3][1].CopyFrom(u)
}

var _ lyap.Jacobian = HenonHeilesJacobian

// HenonHeilesInit returns an initial condition (0, q2, p1, 0) on the
// energy surface H = e, with q2 fixed at 0.45.
func HenonHeilesInit(e float64) []float64 {
	q2 := 0.45
	p1sq := 2*e - q2*q2 + 2*q2*q2*q2/3
	return []float64{0, q2, math.Sqrt(p1sq), 0}
}
