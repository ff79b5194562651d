// Package ads integrates polynomial-valued states (jet transport) and
// adaptively bisects the initial-condition box, organized as a binary
// tree of sub-solutions, whenever the estimated truncation error of a
// leaf's polynomials crosses the split tolerance.
package ads

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// expFit fits y[k] ~= a*exp(b*k) to the nonzero entries of ys by
// Gauss-Newton least squares, seeded with the log-linear regression.
// ok is false when fewer than two nonzero entries exist; the fit is
// then meaningless and the caller treats the series as flat.
func expFit(ys []float64) (a, b float64, ok bool) {
	var ks, ls []float64
	for k, y := range ys {
		if y > 0 {
			ks = append(ks, float64(k))
			ls = append(ls, math.Log(y))
		}
	}
	if len(ks) < 2 {
		return 0, 0, false
	}

	// log-linear seed
	n := float64(len(ks))
	var sk, sl, skk, skl float64
	for i := range ks {
		sk += ks[i]
		sl += ls[i]
		skk += ks[i] * ks[i]
		skl += ks[i] * ls[i]
	}
	den := n*skk - sk*sk
	if den == 0 {
		return 0, 0, false
	}
	b = (n*skl - sk*sl) / den
	a = math.Exp((sl - b*sk) / n)

	jac := mat.NewDense(len(ks), 2, nil)
	rhs := mat.NewVecDense(len(ks), nil)
	var delta mat.VecDense
	for iter := 0; iter < 20; iter++ {
		for i, k := range ks {
			ek := math.Exp(b * k)
			jac.Set(i, 0, ek)
			jac.Set(i, 1, k*a*ek)
			rhs.SetVec(i, math.Exp(ls[i])-a*ek)
		}
		if err := delta.SolveVec(jac, rhs); err != nil {
			break
		}
		da, db := delta.AtVec(0), delta.AtVec(1)
		a += da
		b += db
		if math.Abs(da) < 1e-12*math.Abs(a)+1e-300 && math.Abs(db) < 1e-12 {
			break
		}
		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			// fall back to the seed
			b = (n*skl - sk*sl) / den
			a = math.Exp((sl - b*sk) / n)
			break
		}
	}
	return a, b, true
}

// predictNext extrapolates the fitted series one order past the last
// index of ys.
func predictNext(ys []float64) float64 {
	a, b, ok := expFit(ys)
	if !ok {
		return 0
	}
	return a * math.Exp(b*float64(len(ys)))
}
