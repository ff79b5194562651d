package lyap

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/mpoly"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

type flt = coeff.Float

// Jacobian fills jac (dim x dim polynomials in time) with the
// stability matrix J(x(t)) evaluated on the current jet.
type Jacobian func(jac [][]*poly.Taylor1[flt], x []*poly.Taylor1[flt], p taylor.Params, t *poly.Taylor1[flt])

var (
	// ErrNoJacobian reports an engine run without a Jacobian source.
	ErrNoJacobian = errors.New("lyap: no jacobian source configured")
	// ErrVariables reports a jet-transport Jacobian whose perturbation
	// variable count differs from the state dimension.
	ErrVariables = errors.New("lyap: jet-transport jacobian requires one perturbation variable per state component")
)

var logger = zerolog.Nop()

// SetLogger installs the logger used for run-level warnings.
func SetLogger(l zerolog.Logger) { logger = l }

// Engine integrates the joint system of the ODE and its variational
// equations dPhi/dt = J(x,t)*Phi, renormalizing Phi by modified
// Gram-Schmidt after every accepted step and accumulating the
// log-diagonal of R into time-averaged Lyapunov exponents.
type Engine struct {
	sys    taylor.System[flt]
	jac    Jacobian
	adSys  taylor.System[mpoly.TaylorN]
	dim    int
	order  int
	abstol float64
	opts   taylor.Options

	// jets and scratch, exclusively owned by the engine
	x    []*poly.Taylor1[flt]
	dx   []*poly.Taylor1[flt]
	tp   *poly.Taylor1[flt]
	phi  []*poly.Taylor1[flt]   // dim^2 fundamental-matrix jets, row-major
	jacP [][]*poly.Taylor1[flt] // dim x dim stability matrix

	// jet-transport scratch for the automatic Jacobian
	basis *mpoly.Basis
	adx   []*poly.Taylor1[mpoly.TaylorN]
	addx  []*poly.Taylor1[mpoly.TaylorN]
	adtp  *poly.Taylor1[mpoly.TaylorN]

	phiNum, q, r *mat.Dense

	warnedSteps bool
}

// New prepares a Lyapunov engine. A Jacobian source must be attached
// with WithJacobian or WithAD before Run.
func New(sys taylor.System[flt], order int, abstol float64, opts taylor.Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if order < 2 {
		return nil, fmt.Errorf("%w: order must be at least 2, got %d", taylor.ErrBadOption, order)
	}
	return &Engine{
		sys:    sys,
		dim:    sys.Dim(),
		order:  order,
		abstol: abstol,
		opts:   opts,
	}, nil
}

// WithJacobian attaches a user-supplied stability matrix routine.
func (e *Engine) WithJacobian(j Jacobian) *Engine {
	e.jac = j
	return e
}

// WithAD attaches the same system instantiated over first-order
// multivariate jets; the stability matrix is then read off the linear
// parts of f evaluated on a perturbed state.
func (e *Engine) WithAD(sys taylor.System[mpoly.TaylorN]) *Engine {
	e.adSys = sys
	return e
}

// Result holds the trajectory and the exponent history. From Run,
// Exponents[i] is the spectrum estimate at Times[i+1] (no estimate
// exists at t0). From RunGrid, Exponents has one entry per grid point,
// Exponents[0] is nil, and unreached grid points also stay nil.
type Result struct {
	Times     []float64
	States    [][]float64
	Exponents [][]float64
	Steps     int
	StepLimit bool
}

// Final returns the last spectrum estimate.
func (r *Result) Final() []float64 {
	if len(r.Exponents) == 0 {
		return nil
	}
	return r.Exponents[len(r.Exponents)-1]
}

func (e *Engine) ensureScratch() error {
	if e.x != nil {
		return nil
	}
	if e.jac == nil && e.adSys == nil {
		return ErrNoJacobian
	}
	d := e.dim
	z := flt(0)
	e.x = make([]*poly.Taylor1[flt], d)
	e.dx = make([]*poly.Taylor1[flt], d)
	for j := 0; j < d; j++ {
		e.x[j] = poly.NewConst(z, e.order)
		e.dx[j] = poly.NewConst(z, e.order)
	}
	e.tp = poly.NewVar(z, e.order)
	e.phi = make([]*poly.Taylor1[flt], d*d)
	for j := range e.phi {
		e.phi[j] = poly.NewConst(z, e.order)
	}
	e.jacP = make([][]*poly.Taylor1[flt], d)
	for a := 0; a < d; a++ {
		e.jacP[a] = make([]*poly.Taylor1[flt], d)
		for c := 0; c < d; c++ {
			e.jacP[a][c] = poly.NewConst(z, e.order)
		}
	}
	if e.adSys != nil {
		if e.adSys.Dim() != d {
			return fmt.Errorf("%w: ad system has dimension %d, state has %d", ErrVariables, e.adSys.Dim(), d)
		}
		e.basis = mpoly.NewBasis(d, 1)
		zn := mpoly.New(e.basis)
		e.adx = make([]*poly.Taylor1[mpoly.TaylorN], d)
		e.addx = make([]*poly.Taylor1[mpoly.TaylorN], d)
		for j := 0; j < d; j++ {
			e.adx[j] = poly.NewConst(zn, e.order)
			e.addx[j] = poly.NewConst(zn, e.order)
		}
		e.adtp = poly.NewVar(zn, e.order)
	}
	e.phiNum = mat.NewDense(d, d, nil)
	e.q = mat.NewDense(d, d, nil)
	e.r = mat.NewDense(d, d, nil)
	return nil
}

// Run integrates from t0 to tmax with Phi(t0) = I.
func (e *Engine) Run(x0 []float64, t0, tmax float64, p taylor.Params) (*Result, error) {
	if len(x0) != e.dim {
		return nil, fmt.Errorf("%w: state has %d components, system has %d", taylor.ErrDimension, len(x0), e.dim)
	}
	if err := e.ensureScratch(); err != nil {
		return nil, err
	}
	e.warnedSteps = false
	d := e.dim

	res := &Result{}
	t := t0
	cur := append([]float64(nil), x0...)
	res.Times = append(res.Times, t)
	res.States = append(res.States, append([]float64(nil), cur...))

	phiCur := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		phiCur.Set(i, i, 1)
	}
	sums := make([]float64, d)

	sgn := sign(tmax - t0)
	if sgn == 0 {
		return res, nil
	}

	for {
		dt := e.step(cur, phiCur, t, tmax, sgn, p)

		// advance state and fundamental matrix
		for j := 0; j < d; j++ {
			cur[j] = float64(e.x[j].Eval(flt(dt)))
		}
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				e.phiNum.Set(a, b, float64(e.phi[a*d+b].Eval(flt(dt))))
			}
		}
		t += dt
		res.Steps++

		ModifiedGramSchmidt(e.q, e.r, e.phiNum)
		lam := make([]float64, d)
		for i := 0; i < d; i++ {
			sums[i] += math.Log(e.r.At(i, i))
			lam[i] = sums[i] / (t - t0)
		}
		phiCur.Copy(e.q)

		res.Times = append(res.Times, t)
		res.States = append(res.States, append([]float64(nil), cur...))
		res.Exponents = append(res.Exponents, lam)

		if (tmax-t)*float64(sgn) <= 0 {
			break
		}
		if res.Steps >= e.opts.MaxSteps {
			e.warnSteps(res.Steps)
			res.StepLimit = true
			break
		}
	}
	return res, nil
}

// RunGrid evaluates states and spectrum estimates on a prescribed
// time grid; the estimate attached to a grid point is the one from
// the accepted step covering it.
func (e *Engine) RunGrid(x0 []float64, grid []float64, p taylor.Params) (*Result, error) {
	if len(grid) < 2 {
		return nil, taylor.ErrGridNotSorted
	}
	sgn := sign(grid[len(grid)-1] - grid[0])
	if sgn == 0 {
		return nil, taylor.ErrGridNotSorted
	}
	for i := 0; i+1 < len(grid); i++ {
		if sign(grid[i+1]-grid[i]) != sgn {
			return nil, taylor.ErrGridNotSorted
		}
	}
	if err := e.ensureScratch(); err != nil {
		return nil, err
	}
	e.warnedSteps = false
	d := e.dim

	res := &Result{
		Times:     append([]float64(nil), grid...),
		States:    make([][]float64, len(grid)),
		Exponents: make([][]float64, len(grid)),
	}
	for i := range res.States {
		row := make([]float64, d)
		for j := range row {
			row[j] = math.NaN()
		}
		res.States[i] = row
	}
	res.States[0] = append([]float64(nil), x0...)

	t0 := grid[0]
	tmax := grid[len(grid)-1]
	t := t0
	cur := append([]float64(nil), x0...)
	phiCur := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		phiCur.Set(i, i, 1)
	}
	sums := make([]float64, d)
	next := 1
	steps := 0

	for {
		dt := e.step(cur, phiCur, t, tmax, sgn, p)
		tNew := t + dt

		pending := next
		for pending < len(grid) && (grid[pending]-tNew)*float64(sgn) <= 0 {
			row := make([]float64, d)
			for j := 0; j < d; j++ {
				row[j] = float64(e.x[j].Eval(flt(grid[pending] - t)))
			}
			res.States[pending] = row
			pending++
		}

		for j := 0; j < d; j++ {
			cur[j] = float64(e.x[j].Eval(flt(dt)))
		}
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				e.phiNum.Set(a, b, float64(e.phi[a*d+b].Eval(flt(dt))))
			}
		}
		t = tNew
		steps++

		ModifiedGramSchmidt(e.q, e.r, e.phiNum)
		for i := 0; i < d; i++ {
			sums[i] += math.Log(e.r.At(i, i))
		}
		phiCur.Copy(e.q)

		for ; next < pending; next++ {
			lam := make([]float64, d)
			for i := 0; i < d; i++ {
				lam[i] = sums[i] / (t - t0)
			}
			res.Exponents[next] = lam
		}
		res.Steps = steps

		if next >= len(grid) || (tmax-t)*float64(sgn) <= 0 {
			break
		}
		if steps >= e.opts.MaxSteps {
			e.warnSteps(steps)
			res.StepLimit = true
			break
		}
	}
	return res, nil
}

// step computes the state jet, the stability matrix, the variational
// jet, and returns the clamped step size. The jets stay centered at t
// for the caller to evaluate.
func (e *Engine) step(cur []float64, phiCur *mat.Dense, t, tmax float64, sgn int, p taylor.Params) float64 {
	d := e.dim

	for j := 0; j < d; j++ {
		e.x[j].Reset(flt(cur[j]))
	}
	e.tp.Reset(flt(t))
	e.tp.SetCoeff(1, 1)
	for ord := 0; ord < e.order; ord++ {
		e.sys.Derivative(e.dx, e.x, p, e.tp)
		for j := 0; j < d; j++ {
			e.x[j].SetCoeff(ord+1, e.dx[j].Coeff(ord).DivN(ord+1))
		}
	}

	e.stabilityMatrix(p, t)

	// variational recurrence: Phi_ab[k+1] = (J*Phi)_ab[k] / (k+1)
	for a := 0; a < d; a++ {
		for b := 0; b < d; b++ {
			e.phi[a*d+b].Reset(flt(phiCur.At(a, b)))
		}
	}
	for ord := 0; ord < e.order; ord++ {
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				s := 0.0
				for c := 0; c < d; c++ {
					jac := e.jacP[a][c]
					phi := e.phi[c*d+b]
					for m := 0; m <= ord; m++ {
						s += float64(jac.Coeff(m)) * float64(phi.Coeff(ord-m))
					}
				}
				e.phi[a*d+b].SetCoeff(ord+1, flt(s/float64(ord+1)))
			}
		}
	}

	rem := tmax - t
	h := taylor.StepSizeVec(e.x, e.abstol)
	if math.IsInf(h, 1) {
		return rem
	}
	dt := h * float64(sgn)
	if (dt-rem)*float64(sgn) > 0 {
		dt = rem
	}
	return dt
}

// stabilityMatrix fills jacP from the user routine or by jet
// transport of the current state jet.
func (e *Engine) stabilityMatrix(p taylor.Params, t float64) {
	d := e.dim
	if e.jac != nil {
		e.jac(e.jacP, e.x, p, e.tp)
		return
	}
	for a := 0; a < d; a++ {
		for k := 0; k <= e.order; k++ {
			c := mpoly.Const(e.basis, float64(e.x[a].Coeff(k)))
			if k == 0 {
				c = mpoly.Var(e.basis, a, float64(e.x[a].Coeff(0)))
			}
			e.adx[a].SetCoeff(k, c)
		}
	}
	e.adtp.Reset(mpoly.Const(e.basis, t))
	e.adtp.SetCoeff(1, mpoly.Const(e.basis, 1))
	e.adSys.Derivative(e.addx, e.adx, p, e.adtp)
	for a := 0; a < d; a++ {
		for c := 0; c < d; c++ {
			li := e.basis.LinearIndex(c)
			for k := 0; k <= e.order; k++ {
				e.jacP[a][c].SetCoeff(k, flt(e.addx[a].Coeff(k).Coeff(li)))
			}
		}
	}
}

func (e *Engine) warnSteps(steps int) {
	if e.warnedSteps {
		return
	}
	e.warnedSteps = true
	logger.Warn().Int("steps", steps).Msg("step budget exhausted before reaching final time; returning partial spectrum")
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
