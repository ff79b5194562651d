package taylor

import (
	"fmt"
	"math"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
)

// Solver owns the scratch polynomials of one integration and runs the
// Taylor coefficient recurrence. A Solver must not be used from two
// goroutines at once; independent Solvers are independent.
type Solver[T coeff.Coeff[T]] struct {
	sys    System[T]
	parsed ParsedSystem[T]
	dim    int
	order  int
	abstol float64
	opts   Options

	x  []*poly.Taylor1[T] // state jets, constant term = current state
	dx []*poly.Taylor1[T] // derivative scratch
	tp *poly.Taylor1[T]   // time polynomial, t + s

	observer StepObserver[T]

	probed       bool
	warnedParsed bool
	warnedSteps  bool
}

// StepObserver is called after every accepted step with the step
// index, the new time and the new state.
type StepObserver[T coeff.Coeff[T]] func(step int, t T, x []T)

// Observe installs a step observer.
func (s *Solver[T]) Observe(fn StepObserver[T]) { s.observer = fn }

// NewSolver validates the configuration and prepares a solver of the
// given order. Scratch is allocated lazily on the first call that
// supplies a state, so coefficient types carrying runtime shape (a
// multivariate basis, a precision) size it correctly.
func NewSolver[T coeff.Coeff[T]](sys System[T], order int, abstol float64, opts Options) (*Solver[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if order < 2 {
		return nil, fmt.Errorf("%w: order must be at least 2, got %d", ErrBadOption, order)
	}
	if abstol <= 0 {
		return nil, fmt.Errorf("%w: abstol must be positive, got %g", ErrBadOption, abstol)
	}
	return &Solver[T]{
		sys:    sys,
		dim:    sys.Dim(),
		order:  order,
		abstol: abstol,
		opts:   opts,
	}, nil
}

// Order reports the expansion order.
func (s *Solver[T]) Order() int { return s.order }

// Dim reports the state dimension.
func (s *Solver[T]) Dim() int { return s.dim }

// AbsTol reports the step-size tolerance.
func (s *Solver[T]) AbsTol() float64 { return s.abstol }

// Options reports the run options.
func (s *Solver[T]) Options() Options { return s.opts }

func (s *Solver[T]) ensureScratch(like T) {
	if s.x != nil {
		return
	}
	z := like.Zero()
	s.x = make([]*poly.Taylor1[T], s.dim)
	s.dx = make([]*poly.Taylor1[T], s.dim)
	for j := 0; j < s.dim; j++ {
		s.x[j] = poly.NewConst(z, s.order)
		s.dx[j] = poly.NewConst(z, s.order)
	}
	s.tp = poly.NewVar(z, s.order)
}

// probeParsed exercises the specialized coefficient routine once and
// disables it on any failure, keeping the generic recurrence for the
// rest of the run.
func (s *Solver[T]) probeParsed(x0 []T, t0 T, p Params) {
	s.probed = true
	ps, ok := s.sys.(ParsedSystem[T])
	if !ok || !s.opts.ParseEqs {
		return
	}
	s.loadState(x0, t0)
	err := ps.JetCoeffs(s.x, p, s.tp)
	if err == nil {
		for j := 0; j < s.dim; j++ {
			if n := s.x[j].Coeff(s.order).Norm(); math.IsNaN(n) || math.IsInf(n, 0) {
				err = fmt.Errorf("taylor: parsed jet produced non-finite coefficient in component %d", j)
				break
			}
		}
	}
	if err != nil {
		s.warnParsed(err)
		return
	}
	s.parsed = ps
}

func (s *Solver[T]) warnParsed(err error) {
	if s.warnedParsed {
		return
	}
	s.warnedParsed = true
	logger.Warn().Err(err).Msg("specialized jet routine failed; using generic recurrence")
}

// loadState resets the scratch jets to the given state and time.
func (s *Solver[T]) loadState(x0 []T, t T) {
	s.ensureScratch(x0[0])
	for j := 0; j < s.dim; j++ {
		s.x[j].Reset(x0[j])
		s.dx[j].Reset(x0[j].Zero())
	}
	s.tp.Reset(t)
	s.tp.SetCoeff(1, t.One())
}

// jetCoeffs fills coefficients 1..N of the state polynomials. The
// constant terms must hold the current state and all higher
// coefficients must be zero on entry.
//
// At order ord only coefficients 0..ord of f(x, t) depend on
// coefficients 0..ord of x, so evaluating f on the partially filled
// jets yields the correct coefficient at each stage.
func (s *Solver[T]) jetCoeffs(p Params) {
	if s.parsed != nil {
		err := s.parsed.JetCoeffs(s.x, p, s.tp)
		if err == nil {
			return
		}
		s.parsed = nil
		s.warnParsed(err)
		for j := 0; j < s.dim; j++ {
			s.x[j].Reset(s.x[j].Const())
		}
	}
	for ord := 0; ord < s.order; ord++ {
		s.sys.Derivative(s.dx, s.x, p, s.tp)
		for j := 0; j < s.dim; j++ {
			s.x[j].SetCoeff(ord+1, s.dx[j].Coeff(ord).DivN(ord+1))
		}
	}
}
