// Package taylor implements the adaptive-order Taylor-series ODE
// integrator core: the jet recurrence that fills the Taylor
// coefficients of the state, the step-size rule derived from the top
// coefficients, and the outer integration loop with natural-grid and
// prescribed-grid output.
package taylor

import (
	"errors"
	"fmt"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
)

// Params carries the constant parameters handed to the right-hand
// side on every evaluation.
type Params []float64

// System is the vector right-hand side of dx/dt = f(x, p, t). The
// implementation fills the preallocated dx polynomials; it must not
// retain x, dx or t across calls.
type System[T coeff.Coeff[T]] interface {
	Dim() int
	Derivative(dx, x []*poly.Taylor1[T], p Params, t *poly.Taylor1[T])
}

// Scalar is the one-dimensional right-hand side shape: f returns a
// fresh polynomial instead of mutating a buffer.
type Scalar[T coeff.Coeff[T]] interface {
	Derivative(x *poly.Taylor1[T], p Params, t *poly.Taylor1[T]) *poly.Taylor1[T]
}

// ParsedSystem is an optional capability of a System: a specialized
// routine that fills coefficients 1..N of x in a single pass, with its
// own preallocated workspace. The solver probes it once at setup and
// falls back to the generic recurrence on any failure; the results
// must be numerically identical.
type ParsedSystem[T coeff.Coeff[T]] interface {
	System[T]
	JetCoeffs(x []*poly.Taylor1[T], p Params, t *poly.Taylor1[T]) error
}

// Cloneable is an optional capability of a System whose Derivative
// keeps per-instance workspace; engines that step several solutions
// concurrently clone the system per solution.
type Cloneable[T coeff.Coeff[T]] interface {
	CloneSystem() System[T]
}

var (
	// ErrGridNotSorted reports a prescribed time grid that is not
	// monotone in the integration direction.
	ErrGridNotSorted = errors.New("taylor: time grid not sorted in the integration direction")
	// ErrDimension reports a state/system dimension mismatch.
	ErrDimension = errors.New("taylor: dimension mismatch")
	// ErrBadOption reports an invalid option value.
	ErrBadOption = errors.New("taylor: invalid option")
)

// Options configures a run.
type Options struct {
	// MaxSteps bounds the number of accepted steps per run.
	MaxSteps int
	// ParseEqs enables the specialized coefficient routine when the
	// system provides one.
	ParseEqs bool
	// Dense keeps the per-step solution polynomials in the result.
	Dense bool
	// MaxSplits bounds the number of simultaneous live leaves in
	// domain-splitting runs.
	MaxSplits int
}

// DefaultOptions returns the standard configuration.
func DefaultOptions() Options {
	return Options{MaxSteps: 500, ParseEqs: true, Dense: true, MaxSplits: 10}
}

// Validate checks the option values.
func (o Options) Validate() error {
	if o.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrBadOption, o.MaxSteps)
	}
	if o.MaxSplits <= 0 {
		return fmt.Errorf("%w: max splits must be positive, got %d", ErrBadOption, o.MaxSplits)
	}
	return nil
}

// Result holds a natural-grid trajectory.
type Result[T coeff.Coeff[T]] struct {
	Times  []T
	States [][]T
	// Polys holds, per accepted step, the solution polynomials centered
	// at the step's start time. Populated only when Options.Dense is
	// set.
	Polys [][]*poly.Taylor1[T]
	Steps int
	// StepLimit is set when the run stopped at Options.MaxSteps before
	// reaching the final time; the trajectory up to that point is
	// still valid.
	StepLimit bool
}

// Last returns the final recorded state.
func (r *Result[T]) Last() []T {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// LastTime returns the final recorded time.
func (r *Result[T]) LastTime() T {
	return r.Times[len(r.Times)-1]
}
