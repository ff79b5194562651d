package problems_test

import (
	"math"
	"testing"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/problems"
	"github.com/san-kum/taylor/internal/taylor"
)

// The pendulum started at (q0, 0) librates with period
// T = 4*K(sin(q0/2)^2); after exactly one period the state must
// return to the initial condition to nearly full working precision.
// The complete elliptic integral K is itself computed by Taylor
// integration of its kernel over [0, pi/2].
func TestPendulumPeriodBigFloat(t *testing.T) {
	if testing.Short() {
		t.Skip("256-bit pendulum period is slow")
	}
	const prec = 256
	const order = 90
	const abstol = 1e-80

	q0 := coeff.NewBig(1.3, prec)
	k := q0.DivN(2).Sin()
	kernel := problems.PendulumKernel[coeff.Big]{K2: k.Mul(k)}

	halfPi := coeff.FromBigFloat(coeff.BigPi(prec)).DivN(2)
	kres, err := taylor.IntegrateScalar[coeff.Big](
		kernel, coeff.NewBig(0, prec), coeff.NewBig(0, prec), halfPi,
		order, abstol, nil, taylor.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	period := kres.LastX().Scale(4)

	// sanity: K(sin(0.65)^2) ~ 1.8622 for q0 = 1.3
	if kf := kres.LastX().Float64(); math.Abs(kf-1.86) > 0.05 {
		t.Fatalf("elliptic integral looks wrong: %v", kf)
	}

	x0 := []coeff.Big{q0, coeff.NewBig(0, prec)}
	res, err := taylor.Integrate[coeff.Big](
		problems.NewPendulum[coeff.Big](),
		x0, coeff.NewBig(0, prec), period,
		order, abstol, nil, taylor.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if res.Steps > 500 {
		t.Errorf("took %d steps, want at most 500", res.Steps)
	}
	for i := range x0 {
		diff := res.Last()[i].Sub(x0[i]).Norm()
		if diff > 1e-75 {
			t.Errorf("component %d off by %g after one period", i, diff)
		}
	}
}
