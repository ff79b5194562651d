package taylor

import (
	"fmt"
	"math"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
)

// Integrate advances x0 from t0 to tmax on the natural step grid,
// recording every accepted step. Backward integration is selected by
// tmax < t0. When the step budget runs out the partial trajectory is
// returned with Result.StepLimit set.
func (s *Solver[T]) Integrate(x0 []T, t0, tmax T, p Params) (*Result[T], error) {
	if len(x0) != s.dim {
		return nil, fmt.Errorf("%w: state has %d components, system has %d", ErrDimension, len(x0), s.dim)
	}
	s.ensureScratch(x0[0])
	if !s.probed {
		s.probeParsed(x0, t0, p)
	}
	s.warnedSteps = false

	res := &Result[T]{}
	t := t0
	cur := append([]T(nil), x0...)
	res.Times = append(res.Times, t)
	res.States = append(res.States, append([]T(nil), cur...))

	sgn := tmax.Sub(t0).Sign()
	if sgn == 0 {
		return res, nil
	}

	for {
		s.loadState(cur, t)
		s.jetCoeffs(p)
		dt := s.stepDT(t, tmax, sgn)

		if s.opts.Dense {
			step := make([]*poly.Taylor1[T], s.dim)
			for j := range step {
				step[j] = s.x[j].Clone()
			}
			res.Polys = append(res.Polys, step)
		}

		for j := 0; j < s.dim; j++ {
			cur[j] = s.x[j].Eval(dt)
		}
		t = t.Add(dt)
		res.Steps++
		res.Times = append(res.Times, t)
		res.States = append(res.States, append([]T(nil), cur...))
		if s.observer != nil {
			s.observer(res.Steps, t, cur)
		}

		if tmax.Sub(t).Sign()*sgn <= 0 {
			break
		}
		if res.Steps >= s.opts.MaxSteps {
			s.warnSteps(res.Steps)
			res.StepLimit = true
			break
		}
	}
	return res, nil
}

// IntegrateGrid evaluates the solution on a prescribed time grid,
// sorted ascending or descending; the first and last grid points play
// the roles of t0 and tmax. Grid points the run never reaches (step
// budget) keep their NaN fill.
func (s *Solver[T]) IntegrateGrid(x0 []T, grid []T, p Params) ([][]T, error) {
	if len(x0) != s.dim {
		return nil, fmt.Errorf("%w: state has %d components, system has %d", ErrDimension, len(x0), s.dim)
	}
	if len(grid) < 2 {
		return nil, fmt.Errorf("%w: need at least two grid points, got %d", ErrGridNotSorted, len(grid))
	}
	sgn := grid[len(grid)-1].Sub(grid[0]).Sign()
	if sgn == 0 {
		return nil, ErrGridNotSorted
	}
	for i := 0; i+1 < len(grid); i++ {
		if grid[i+1].Sub(grid[i]).Sign() != sgn {
			return nil, ErrGridNotSorted
		}
	}

	out := make([][]T, len(grid))
	nan := x0[0].NaN()
	for i := range out {
		row := make([]T, s.dim)
		for j := range row {
			row[j] = nan
		}
		out[i] = row
	}
	out[0] = append([]T(nil), x0...)

	s.ensureScratch(x0[0])
	t := grid[0]
	tmax := grid[len(grid)-1]
	if !s.probed {
		s.probeParsed(x0, t, p)
	}
	s.warnedSteps = false

	cur := append([]T(nil), x0...)
	next := 1
	steps := 0

	for {
		s.loadState(cur, t)
		s.jetCoeffs(p)
		dt := s.stepDT(t, tmax, sgn)
		tNew := t.Add(dt)

		// Emit every grid point covered by this step from the step's
		// polynomial, recentered at t.
		for next < len(grid) && grid[next].Sub(tNew).Sign()*sgn <= 0 {
			row := make([]T, s.dim)
			off := grid[next].Sub(t)
			for j := 0; j < s.dim; j++ {
				row[j] = s.x[j].Eval(off)
			}
			out[next] = row
			next++
		}

		for j := 0; j < s.dim; j++ {
			cur[j] = s.x[j].Eval(dt)
		}
		t = tNew
		steps++

		if next >= len(grid) || tmax.Sub(t).Sign()*sgn <= 0 {
			break
		}
		if steps >= s.opts.MaxSteps {
			s.warnSteps(steps)
			break
		}
	}
	return out, nil
}

// stepDT applies the step-size rule, orients the step and clamps it so
// the run never overshoots tmax. A stationary state (all coefficients
// zero above order 0) jumps to tmax in a single step.
func (s *Solver[T]) stepDT(t, tmax T, sgn int) T {
	rem := tmax.Sub(t)
	h := StepSizeVec(s.x, s.abstol)
	if math.IsInf(h, 1) {
		return rem
	}
	dt := t.One().Scale(h * float64(sgn))
	if dt.Sub(rem).Sign()*sgn > 0 {
		dt = rem
	}
	return dt
}

func (s *Solver[T]) warnSteps(steps int) {
	if s.warnedSteps {
		return
	}
	s.warnedSteps = true
	logger.Warn().Int("steps", steps).Msg("step budget exhausted before reaching final time; returning partial trajectory")
}

// SystemFunc adapts a plain function and a dimension to the System
// interface.
type SystemFunc[T coeff.Coeff[T]] struct {
	N int
	F func(dx, x []*poly.Taylor1[T], p Params, t *poly.Taylor1[T])
}

func (s SystemFunc[T]) Dim() int { return s.N }

func (s SystemFunc[T]) Derivative(dx, x []*poly.Taylor1[T], p Params, t *poly.Taylor1[T]) {
	s.F(dx, x, p, t)
}

// ScalarFunc adapts a plain function to the Scalar interface.
type ScalarFunc[T coeff.Coeff[T]] func(x *poly.Taylor1[T], p Params, t *poly.Taylor1[T]) *poly.Taylor1[T]

func (f ScalarFunc[T]) Derivative(x *poly.Taylor1[T], p Params, t *poly.Taylor1[T]) *poly.Taylor1[T] {
	return f(x, p, t)
}

type scalarAdapter[T coeff.Coeff[T]] struct {
	f Scalar[T]
}

func (scalarAdapter[T]) Dim() int { return 1 }

func (a scalarAdapter[T]) Derivative(dx, x []*poly.Taylor1[T], p Params, t *poly.Taylor1[T]) {
	dx[0].CopyFrom(a.f.Derivative(x[0], p, t))
}

// ScalarResult holds a one-dimensional natural-grid trajectory.
type ScalarResult[T coeff.Coeff[T]] struct {
	Times     []T
	Xs        []T
	Polys     []*poly.Taylor1[T]
	Steps     int
	StepLimit bool
}

// LastX returns the final state value.
func (r *ScalarResult[T]) LastX() T { return r.Xs[len(r.Xs)-1] }

// IntegrateScalar integrates a one-dimensional system whose right-hand
// side returns a fresh polynomial.
func IntegrateScalar[T coeff.Coeff[T]](f Scalar[T], x0 T, t0, tmax T, order int, abstol float64, p Params, opts Options) (*ScalarResult[T], error) {
	s, err := NewSolver[T](scalarAdapter[T]{f: f}, order, abstol, opts)
	if err != nil {
		return nil, err
	}
	res, err := s.Integrate([]T{x0}, t0, tmax, p)
	if err != nil {
		return nil, err
	}
	out := &ScalarResult[T]{Times: res.Times, Steps: res.Steps, StepLimit: res.StepLimit}
	for _, st := range res.States {
		out.Xs = append(out.Xs, st[0])
	}
	for _, ps := range res.Polys {
		out.Polys = append(out.Polys, ps[0])
	}
	return out, nil
}

// IntegrateScalarGrid evaluates a one-dimensional system on a
// prescribed time grid.
func IntegrateScalarGrid[T coeff.Coeff[T]](f Scalar[T], x0 T, grid []T, order int, abstol float64, p Params, opts Options) ([]T, error) {
	s, err := NewSolver[T](scalarAdapter[T]{f: f}, order, abstol, opts)
	if err != nil {
		return nil, err
	}
	rows, err := s.IntegrateGrid([]T{x0}, grid, p)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out, nil
}

// Integrate is the package-level vector entry point.
func Integrate[T coeff.Coeff[T]](sys System[T], x0 []T, t0, tmax T, order int, abstol float64, p Params, opts Options) (*Result[T], error) {
	s, err := NewSolver[T](sys, order, abstol, opts)
	if err != nil {
		return nil, err
	}
	return s.Integrate(x0, t0, tmax, p)
}

// IntegrateGrid is the package-level prescribed-grid entry point.
func IntegrateGrid[T coeff.Coeff[T]](sys System[T], x0 []T, grid []T, order int, abstol float64, p Params, opts Options) ([][]T, error) {
	s, err := NewSolver[T](sys, order, abstol, opts)
	if err != nil {
		return nil, err
	}
	return s.IntegrateGrid(x0, grid, p)
}
