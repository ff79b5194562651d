package taylor

import (
	"math"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/poly"
)

// StepSize derives the time step for one solution polynomial from the
// norms of its two highest coefficients:
//
//	h = min over k in {N-1, N} of (abstol / ||c_k||)^(1/k)
//
// Zero coefficients are skipped; if both vanish the result is +Inf.
func StepSize[T coeff.Coeff[T]](x *poly.Taylor1[T], abstol float64) float64 {
	n := x.Order()
	h := math.Inf(1)
	for k := n - 1; k <= n; k++ {
		nk := x.Coeff(k).Norm()
		if nk == 0 {
			continue
		}
		hk := math.Pow(abstol/nk, 1/float64(k))
		if hk < h {
			h = hk
		}
	}
	return h
}

// StepSizeVec is the vector step: the minimum of the per-component
// steps. When every component yields +Inf the Jorba-Zou fallback rule
// is applied; a state whose polynomials are all identically zero
// still returns +Inf and is treated as stationary by the integrator.
func StepSizeVec[T coeff.Coeff[T]](xs []*poly.Taylor1[T], abstol float64) float64 {
	h := math.Inf(1)
	for _, x := range xs {
		if hx := StepSize(x, abstol); hx < h {
			h = hx
		}
	}
	if math.IsInf(h, 1) {
		h = secondStepSize(xs)
	}
	return h
}

// secondStepSize salvages a finite step from the lower-order
// coefficients when the two leading ones vanish:
//
//	h' = max over k in {1..N-2} of (1 / ||c_k||)^(1/k)
//
// independent of the tolerance. Identically zero polynomials are
// skipped; the vector value is the minimum over the components that
// produce a finite rule.
func secondStepSize[T coeff.Coeff[T]](xs []*poly.Taylor1[T]) float64 {
	h := math.Inf(1)
	for _, x := range xs {
		n := x.Order()
		hx := math.Inf(-1)
		for k := 1; k <= n-2; k++ {
			nk := x.Coeff(k).Norm()
			if nk == 0 {
				continue
			}
			hk := math.Pow(1/nk, 1/float64(k))
			if hk > hx {
				hx = hk
			}
		}
		if !math.IsInf(hx, -1) && hx < h {
			h = hx
		}
	}
	return h
}
