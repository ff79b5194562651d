package ads

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/san-kum/taylor/internal/mpoly"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/taylor"
)

var logger = zerolog.Nop()

// SetLogger installs the logger used for run-level warnings.
func SetLogger(l zerolog.Logger) { logger = l }

// Engine advances every live leaf of a domain tree in lock step and
// bisects leaves whose predicted truncation error exceeds the split
// tolerance. The leaf list is frozen at the start of each outer
// iteration; children created during an iteration are picked up by
// the next one.
type Engine struct {
	sys    taylor.System[mpoly.TaylorN]
	dim    int
	order  int
	stol   float64
	abstol float64
	opts   taylor.Options

	splits    int
	parsed    atomic.Bool
	parsedLog sync.Once
}

// New prepares a domain-splitting engine. stol is the per-component
// truncation tolerance that triggers a split; abstol is the step-size
// tolerance shared with the plain integrator.
func New(sys taylor.System[mpoly.TaylorN], order int, stol, abstol float64, opts taylor.Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if order < 2 {
		return nil, fmt.Errorf("%w: order must be at least 2, got %d", taylor.ErrBadOption, order)
	}
	if stol <= 0 || abstol <= 0 {
		return nil, fmt.Errorf("%w: tolerances must be positive", taylor.ErrBadOption)
	}
	return &Engine{
		sys:    sys,
		dim:    sys.Dim(),
		order:  order,
		stol:   stol,
		abstol: abstol,
		opts:   opts,
	}, nil
}

// Splits reports how many bisections the engine has performed.
func (e *Engine) Splits() int { return e.splits }

// leafScratch is the per-leaf workspace: jets, derivative mirror,
// time polynomial and the leaf's own system instance when the system
// carries state.
type leafScratch struct {
	sys taylor.System[mpoly.TaylorN]
	x   []*poly.Taylor1[mpoly.TaylorN]
	dx  []*poly.Taylor1[mpoly.TaylorN]
	tp  *poly.Taylor1[mpoly.TaylorN]
}

func (e *Engine) newScratch(b *mpoly.Basis) *leafScratch {
	sys := e.sys
	if c, ok := sys.(taylor.Cloneable[mpoly.TaylorN]); ok {
		sys = c.CloneSystem()
	}
	z := mpoly.New(b)
	sc := &leafScratch{
		sys: sys,
		x:   make([]*poly.Taylor1[mpoly.TaylorN], e.dim),
		dx:  make([]*poly.Taylor1[mpoly.TaylorN], e.dim),
		tp:  poly.NewVar(z, e.order),
	}
	for j := 0; j < e.dim; j++ {
		sc.x[j] = poly.NewConst(z, e.order)
		sc.dx[j] = poly.NewConst(z, e.order)
	}
	return sc
}

type stepOut struct {
	t        float64
	state    []mpoly.TaylorN
	stepPoly []*poly.Taylor1[mpoly.TaylorN]
	// normPred[j] is the predicted next-order norm of component j;
	// varPred[v] sums the predicted per-variable series over the
	// components.
	normPred []float64
	varPred  []float64
}

// Run integrates the tree rooted at root until every leaf reaches
// tmax or the iteration budget runs out. The tree is mutated in
// place.
func (e *Engine) Run(root *Node, tmax float64, p taylor.Params) error {
	if len(root.State) != e.dim {
		return fmt.Errorf("%w: root state has %d components, system has %d", taylor.ErrDimension, len(root.State), e.dim)
	}
	basis := root.State[0].Basis()
	if basis.Vars() != len(root.Lo) {
		return fmt.Errorf("%w: state has %d perturbation variables, box has %d directions", taylor.ErrDimension, basis.Vars(), len(root.Lo))
	}
	sgn := 1
	if tmax < root.T {
		sgn = -1
	}

	e.probeParsed(root, p)

	iters := 0
	warned := false
	for {
		var live []*Node
		for _, lf := range root.Leaves() {
			if (tmax-lf.T)*float64(sgn) > 0 {
				live = append(live, lf)
			}
		}
		if len(live) == 0 {
			return nil
		}
		if iters >= e.opts.MaxSteps {
			if !warned {
				warned = true
				logger.Warn().Int("iterations", iters).Int("leaves", len(live)).
					Msg("step budget exhausted before every leaf reached final time")
			}
			return nil
		}
		iters++

		// Step every frozen leaf; each has exclusive scratch, so the
		// leaves can run concurrently.
		outs := make([]*stepOut, len(live))
		var wg sync.WaitGroup
		for i, lf := range live {
			wg.Add(1)
			go func(i int, lf *Node) {
				defer wg.Done()
				outs[i] = e.stepLeaf(lf, tmax, sgn, p)
			}(i, lf)
		}
		wg.Wait()

		// Tree surgery is sequential; decisions depend only on the
		// leaf's own step output.
		for i, lf := range live {
			out := outs[i]
			if e.opts.Dense {
				lf.StepPoly = out.stepPoly
			}
			dir := -1
			if e.splits < e.opts.MaxSplits && e.shouldSplit(out) {
				dir = argmax(out.varPred)
			}
			if dir >= 0 {
				lf.split(dir, out.state, out.t)
				e.splits++
			} else {
				lf.extend(out.state, out.t)
			}
		}
	}
}

func (e *Engine) shouldSplit(out *stepOut) bool {
	for _, n := range out.normPred {
		if n > e.stol {
			return true
		}
	}
	return false
}

func argmax(xs []float64) int {
	best, bi := math.Inf(-1), 0
	for i, x := range xs {
		if x > best {
			best, bi = x, i
		}
	}
	return bi
}

// stepLeaf computes one Taylor step for a single leaf and the split
// indicators of the advanced state.
func (e *Engine) stepLeaf(lf *Node, tmax float64, sgn int, p taylor.Params) *stepOut {
	basis := lf.State[0].Basis()
	if lf.scratch == nil {
		lf.scratch = e.newScratch(basis)
	}
	sc := lf.scratch

	for j := 0; j < e.dim; j++ {
		sc.x[j].Reset(lf.State[j])
	}
	sc.tp.Reset(mpoly.Const(basis, lf.T))
	sc.tp.SetCoeff(1, mpoly.Const(basis, 1))

	e.jet(sc, p)

	rem := tmax - lf.T
	h := taylor.StepSizeVec(sc.x, e.abstol)
	dt := rem
	if !math.IsInf(h, 1) {
		dt = h * float64(sgn)
		if (dt-rem)*float64(sgn) > 0 {
			dt = rem
		}
	}

	out := &stepOut{
		t:        lf.T + dt,
		state:    make([]mpoly.TaylorN, e.dim),
		normPred: make([]float64, e.dim),
		varPred:  make([]float64, basis.Vars()),
	}
	dtN := mpoly.Const(basis, dt)
	deg := basis.Degree()
	ys := make([]float64, deg+1)
	for j := 0; j < e.dim; j++ {
		out.state[j] = sc.x[j].Eval(dtN)

		for k := 0; k <= deg; k++ {
			ys[k] = out.state[j].OrderNorm1(k)
		}
		out.normPred[j] = predictNext(ys)

		for v := 0; v < basis.Vars(); v++ {
			for k := 0; k <= deg; k++ {
				ys[k] = out.state[j].VarOrderNorm1(v, k)
			}
			out.varPred[v] += predictNext(ys)
		}
	}
	if e.opts.Dense {
		out.stepPoly = make([]*poly.Taylor1[mpoly.TaylorN], e.dim)
		for j := 0; j < e.dim; j++ {
			out.stepPoly[j] = sc.x[j].Clone()
		}
	}
	return out
}

// jet fills the Taylor coefficients of the leaf jets, preferring the
// specialized routine when it survived the probe.
func (e *Engine) jet(sc *leafScratch, p taylor.Params) {
	if e.parsed.Load() {
		if ps, ok := sc.sys.(taylor.ParsedSystem[mpoly.TaylorN]); ok {
			if err := ps.JetCoeffs(sc.x, p, sc.tp); err == nil {
				return
			}
			e.parsed.Store(false)
			e.parsedLog.Do(func() {
				logger.Warn().Msg("specialized jet routine failed; using generic recurrence")
			})
			for j := 0; j < e.dim; j++ {
				sc.x[j].Reset(sc.x[j].Const())
			}
		}
	}
	for ord := 0; ord < e.order; ord++ {
		sc.sys.Derivative(sc.dx, sc.x, p, sc.tp)
		for j := 0; j < e.dim; j++ {
			sc.x[j].SetCoeff(ord+1, sc.dx[j].Coeff(ord).DivN(ord+1))
		}
	}
}

// probeParsed exercises the specialized routine on a throwaway copy of
// the root state and disables it on any failure.
func (e *Engine) probeParsed(root *Node, p taylor.Params) {
	e.parsed.Store(false)
	ps, ok := e.sys.(taylor.ParsedSystem[mpoly.TaylorN])
	if !ok || !e.opts.ParseEqs {
		return
	}
	basis := root.State[0].Basis()
	sc := e.newScratch(basis)
	for j := 0; j < e.dim; j++ {
		sc.x[j].Reset(root.State[j])
	}
	sc.tp.Reset(mpoly.Const(basis, root.T))
	sc.tp.SetCoeff(1, mpoly.Const(basis, 1))
	if err := ps.JetCoeffs(sc.x, p, sc.tp); err != nil {
		e.parsedLog.Do(func() {
			logger.Warn().Err(err).Msg("specialized jet routine failed its probe; using generic recurrence")
		})
		return
	}
	e.parsed.Store(true)
}
