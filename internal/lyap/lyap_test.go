package lyap_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/lyap"
	"github.com/san-kum/taylor/internal/mpoly"
	"github.com/san-kum/taylor/internal/poly"
	"github.com/san-kum/taylor/internal/problems"
	"github.com/san-kum/taylor/internal/taylor"
)

func TestModifiedGramSchmidt(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{2, 4, 6} {
		a := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a.Set(i, j, rng.NormFloat64())
			}
		}
		q := mat.NewDense(n, n, nil)
		r := mat.NewDense(n, n, nil)
		lyap.ModifiedGramSchmidt(q, r, a)

		// Q^T Q = I within a few units of roundoff per dimension
		var qtq mat.Dense
		qtq.Mul(q.T(), q)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = 1
				}
				if math.Abs(qtq.At(i, j)-want) > 1e-14*float64(n) {
					t.Errorf("n=%d: QtQ[%d][%d] = %v", n, i, j, qtq.At(i, j))
				}
			}
		}

		// A = Q R, R upper triangular with positive diagonal
		var qr mat.Dense
		qr.Mul(q, r)
		for i := 0; i < n; i++ {
			if r.At(i, i) <= 0 {
				t.Errorf("n=%d: R[%d][%d] = %v, want positive", n, i, i, r.At(i, i))
			}
			for j := 0; j < n; j++ {
				if j < i && r.At(i, j) != 0 {
					t.Errorf("n=%d: R not upper triangular at (%d,%d)", n, i, j)
				}
				if math.Abs(qr.At(i, j)-a.At(i, j)) > 1e-13 {
					t.Errorf("n=%d: QR differs from A at (%d,%d)", n, i, j)
				}
			}
		}
	}
}

func TestClassicalGramSchmidtAgrees(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 4
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, rng.NormFloat64())
		}
	}
	qm := mat.NewDense(n, n, nil)
	rm := mat.NewDense(n, n, nil)
	qc := mat.NewDense(n, n, nil)
	rc := mat.NewDense(n, n, nil)
	lyap.ModifiedGramSchmidt(qm, rm, a)
	lyap.ClassicalGramSchmidt(qc, rc, a)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if math.Abs(qm.At(i, j)-qc.At(i, j)) > 1e-12 {
				t.Errorf("variants disagree at (%d,%d)", i, j)
			}
		}
	}
}

// diagonalFlow is dx0 = a*x0, dx1 = -a*x1 with constant Jacobian; its
// exponents are exactly (a, -a).
func diagonalFlow(a float64) (taylor.System[coeff.Float], lyap.Jacobian) {
	sys := taylor.SystemFunc[coeff.Float]{
		N: 2,
		F: func(dx, x []*poly.Taylor1[coeff.Float], p taylor.Params, tp *poly.Taylor1[coeff.Float]) {
			dx[0].CopyFrom(poly.Scale(x[0], a))
			dx[1].CopyFrom(poly.Scale(x[1], -a))
		},
	}
	jac := func(jacP [][]*poly.Taylor1[coeff.Float], x []*poly.Taylor1[coeff.Float], p taylor.Params, tp *poly.Taylor1[coeff.Float]) {
		jacP[0][0].Reset(coeff.Float(a))
		jacP[0][1].Reset(0)
		jacP[1][0].Reset(0)
		jacP[1][1].Reset(coeff.Float(-a))
	}
	return sys, jac
}

func TestDiagonalFlowExponents(t *testing.T) {
	sys, jac := diagonalFlow(0.5)
	opts := taylor.DefaultOptions()
	opts.MaxSteps = 5000
	eng, err := lyap.New(sys, 20, 1e-14, opts)
	if err != nil {
		t.Fatal(err)
	}
	eng.WithJacobian(jac)

	res, err := eng.Run([]float64{1, 1}, 0, 50, nil)
	if err != nil {
		t.Fatal(err)
	}
	lam := res.Final()
	if math.Abs(lam[0]-0.5) > 1e-8 || math.Abs(lam[1]+0.5) > 1e-8 {
		t.Errorf("exponents %v, want (0.5, -0.5)", lam)
	}
}

func TestHarmonicExponentsVanish(t *testing.T) {
	opts := taylor.DefaultOptions()
	opts.MaxSteps = 5000
	eng, err := lyap.New(problems.NewHarmonic[coeff.Float](), 20, 1e-14, opts)
	if err != nil {
		t.Fatal(err)
	}
	eng.WithAD(problems.NewHarmonic[mpoly.TaylorN]())

	res, err := eng.Run([]float64{1, 0}, 0, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range res.Final() {
		if math.Abs(l) > 1e-2 {
			t.Errorf("exponent %d = %v, want near 0", i, l)
		}
	}
}

func TestUserAndADJacobiansAgree(t *testing.T) {
	x0 := problems.HenonHeilesInit(0.125)
	opts := taylor.DefaultOptions()
	opts.MaxSteps = 5000

	run := func(configure func(*lyap.Engine)) *lyap.Result {
		eng, err := lyap.New(problems.NewHenonHeiles[coeff.Float](), 20, 1e-14, opts)
		if err != nil {
			t.Fatal(err)
		}
		configure(eng)
		res, err := eng.Run(x0, 0, 20, nil)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	user := run(func(e *lyap.Engine) { e.WithJacobian(problems.HenonHeilesJacobian) })
	ad := run(func(e *lyap.Engine) { e.WithAD(problems.NewHenonHeiles[mpoly.TaylorN]()) })

	lu, la := user.Final(), ad.Final()
	for i := range lu {
		if math.Abs(lu[i]-la[i]) > 1e-9 {
			t.Errorf("exponent %d: user %v vs ad %v", i, lu[i], la[i])
		}
	}
}

func TestNoJacobianConfigured(t *testing.T) {
	eng, err := lyap.New(problems.NewHarmonic[coeff.Float](), 20, 1e-14, taylor.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	_, err = eng.Run([]float64{1, 0}, 0, 1, nil)
	if !errors.Is(err, lyap.ErrNoJacobian) {
		t.Errorf("got %v, want lyap.ErrNoJacobian", err)
	}
}

func TestADVariableMismatch(t *testing.T) {
	eng, err := lyap.New(problems.NewHenonHeiles[coeff.Float](), 20, 1e-14, taylor.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	eng.WithAD(problems.NewHarmonic[mpoly.TaylorN]())
	_, err = eng.Run(problems.HenonHeilesInit(0.125), 0, 1, nil)
	if !errors.Is(err, lyap.ErrVariables) {
		t.Errorf("got %v, want lyap.ErrVariables", err)
	}
}

func TestRunGridShapes(t *testing.T) {
	sys, jac := diagonalFlow(0.3)
	opts := taylor.DefaultOptions()
	opts.MaxSteps = 5000
	eng, err := lyap.New(sys, 20, 1e-14, opts)
	if err != nil {
		t.Fatal(err)
	}
	eng.WithJacobian(jac)

	grid := []float64{0, 5, 10, 15, 20}
	res, err := eng.RunGrid([]float64{1, 1}, grid, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.States) != len(grid) || len(res.Exponents) != len(grid) {
		t.Fatalf("grid result has wrong shape")
	}
	for i := 1; i < len(grid); i++ {
		want := math.Exp(0.3 * grid[i])
		if math.Abs(res.States[i][0]-want) > 1e-8*want {
			t.Errorf("grid state at t=%v: got %v want %v", grid[i], res.States[i][0], want)
		}
		if math.Abs(res.Exponents[i][0]-0.3) > 1e-6 {
			t.Errorf("grid exponent at t=%v: %v", grid[i], res.Exponents[i][0])
		}
	}
}

// Henon-Heiles at energy 0.125: the leading exponent settles below
// 0.1 and the spectrum sums to zero (volume preservation).
func TestHenonHeilesSpectrum(t *testing.T) {
	if testing.Short() {
		t.Skip("long Henon-Heiles spectrum run")
	}
	opts := taylor.DefaultOptions()
	opts.MaxSteps = 200000
	eng, err := lyap.New(problems.NewHenonHeiles[coeff.Float](), 22, 1e-14, opts)
	if err != nil {
		t.Fatal(err)
	}
	eng.WithAD(problems.NewHenonHeiles[mpoly.TaylorN]())

	res, err := eng.Run(problems.HenonHeilesInit(0.125), 0, 2000, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.StepLimit {
		t.Fatal("unexpected step limit")
	}
	lam := res.Final()
	if math.Abs(lam[0]) >= 0.1 {
		t.Errorf("lambda_1 = %v, want |lambda_1| < 0.1", lam[0])
	}
	sum := lam[0] + lam[1] + lam[2] + lam[3]
	if math.Abs(sum) > 1e-6 {
		t.Errorf("spectrum sum = %g, want within 1e-6 of 0", sum)
	}
}
