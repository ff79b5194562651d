// Package coeff defines the numeric contract the Taylor integrator
// needs from a coefficient type, together with the two scalar
// implementations used throughout: machine floats and arbitrary
// precision floats.
package coeff

// Coeff is the minimal field-like surface the polynomial layer and the
// integrator consume: ring operations, scaling by a machine float,
// division by a positive integer, and an absolute-value norm. All
// operations are value-semantic; implementations never mutate the
// receiver.
type Coeff[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Neg() T
	// Scale multiplies by a machine float. The float is lifted exactly
	// into the coefficient's own precision.
	Scale(float64) T
	// DivN divides by a positive integer.
	DivN(int) T
	// Norm is the infinity norm of the value as a machine float.
	Norm() float64
	// Sign is -1, 0 or +1. Structured types report the sign of their
	// leading scalar part.
	Sign() int
	IsZero() bool
	Zero() T
	One() T
	// NaN is the not-a-number fill value used for out-of-range grid
	// points. Types without a NaN representation return +Inf.
	NaN() T
}

// Analytic extends Coeff with the elementary functions required by
// transcendental right-hand sides and by the truncated-series
// recurrences built on top of them.
type Analytic[T any] interface {
	Coeff[T]
	Exp() T
	Log() T
	Sin() T
	Cos() T
	Sqrt() T
	// Inv returns the multiplicative inverse.
	Inv() T
}
