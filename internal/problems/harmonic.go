package problems

import (
	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

// Harmonic is the unit harmonic oscillator: dq = p, dp = -q.
type Harmonic[T coeff.Coeff[T]] struct{}

func NewHarmonic[T coeff.Coeff[T]]() Harmonic[T] {
	return Harmonic[T]{}
}

func (Harmonic[T]) Dim() int { return 2 }

func (Harmonic[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	dx[0].CopyFrom(x[1])
	dx[1].CopyFrom(x[0])
	dx[1].NegAssign()
}

func (Harmonic[T]) Energy(x []float64) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// Rotation is the planar rotation dx = -y, dy = x; integrable, so the
// jet-transport polynomials stay bounded and splits are driven purely
// by the tolerance.
type Rotation[T coeff.Coeff[T]] struct{}

func NewRotation[T coeff.Coeff[T]]() Rotation[T] {
	return Rotation[T]{}
}

func (Rotation[T]) Dim() int { return 2 }

func (Rotation[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	dx[0].CopyFrom(x[1])
	dx[0].NegAssign()
	dx[1].CopyFrom(x[0])
}
