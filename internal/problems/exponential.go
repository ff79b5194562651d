// Package problems collects the reference dynamical systems used by
// the command-line tool and the test suites. Each system is generic
// over the coefficient type, so one definition serves machine floats,
// big floats and jet-transport polynomials alike; parameters live on
// the struct.
package problems

import (
	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

// Exponential is dx_i/dt = x_i for every component, the simplest
// closed-form benchmark.
type Exponential[T coeff.Coeff[T]] struct {
	N int
}

func NewExponential[T coeff.Coeff[T]](n int) Exponential[T] {
	return Exponential[T]{N: n}
}

func (e Exponential[T]) Dim() int { return e.N }

func (e Exponential[T]) Derivative(dx, x []*poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) {
	for i := 0; i < e.N; i++ {
		dx[i].CopyFrom(x[i])
	}
}

// ExponentialScalar is the scalar shape of the same flow.
func ExponentialScalar[T coeff.Coeff[T]]() taylor.ScalarFunc[T] {
	return func(x *poly.Taylor1[T], p taylor.Params, t *poly.Taylor1[T]) *poly.Taylor1[T] {
		return x.Clone()
	}
}
