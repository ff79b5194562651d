package problems_test

import (
	"math"
	"testing"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/metrics"
	"github.com/san-kum/taylor/internal/problems"
	"github.com/san-kum/taylor/internal/taylor"
)

func integrateFloat(t *testing.T, sys taylor.System[coeff.Float], x0 []float64, tmax float64) ([]float64, [][]float64) {
	t.Helper()
	opts := taylor.DefaultOptions()
	opts.MaxSteps = 100000
	res, err := taylor.Integrate[coeff.Float](sys, coeff.Floats(x0), 0, coeff.Float(tmax), 20, 1e-14, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	times := make([]float64, len(res.Times))
	states := make([][]float64, len(res.States))
	for i := range res.Times {
		times[i] = float64(res.Times[i])
		row := make([]float64, len(res.States[i]))
		for j, v := range res.States[i] {
			row[j] = float64(v)
		}
		states[i] = row
	}
	return times, states
}

func TestRegistryEntries(t *testing.T) {
	reg := problems.NewRegistry()
	for _, name := range reg.Names() {
		e, err := reg.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		sys := e.New()
		if sys.Dim() != len(e.X0) {
			t.Errorf("%s: default state has %d components for dimension %d", name, len(e.X0), sys.Dim())
		}
		if ad := e.NewAD(); ad.Dim() != sys.Dim() {
			t.Errorf("%s: ad instantiation changes dimension", name)
		}
	}
	if _, err := reg.Get("nope"); err == nil {
		t.Error("unknown problem must error")
	}
}

func TestPendulumConservesEnergy(t *testing.T) {
	sys := problems.NewPendulum[coeff.Float]()
	times, states := integrateFloat(t, sys, []float64{1.3, 0}, 50)

	drift := metrics.NewEnergyDrift(sys.Energy)
	metrics.ObserveAll([]metrics.Metric{drift}, times, states)
	if drift.Value() > 1e-11 {
		t.Errorf("energy drift %g", drift.Value())
	}
}

func TestHenonHeilesConservesEnergy(t *testing.T) {
	sys := problems.NewHenonHeiles[coeff.Float]()
	x0 := problems.HenonHeilesInit(0.125)
	if got := sys.Energy(x0); math.Abs(got-0.125) > 1e-15 {
		t.Fatalf("initial energy %v, want 0.125", got)
	}

	times, states := integrateFloat(t, sys, x0, 100)
	drift := metrics.NewEnergyDrift(sys.Energy)
	metrics.ObserveAll([]metrics.Metric{drift}, times, states)
	if drift.Value() > 1e-11 {
		t.Errorf("energy drift %g", drift.Value())
	}
}

func TestKeplerCircularOrbit(t *testing.T) {
	sys := problems.NewKepler[coeff.Float]()
	// unit circular orbit has period 2*pi
	_, states := integrateFloat(t, sys, []float64{1, 0, 0, 1}, 2*math.Pi)
	last := states[len(states)-1]
	for i, want := range []float64{1, 0, 0, 1} {
		if math.Abs(last[i]-want) > 1e-10 {
			t.Errorf("component %d after one period: %v, want %v", i, last[i], want)
		}
	}
}

func TestRotationIsIntegrable(t *testing.T) {
	sys := problems.NewRotation[coeff.Float]()
	_, states := integrateFloat(t, sys, []float64{1, 0}, math.Pi/2)
	last := states[len(states)-1]
	// quarter turn maps (1, 0) to (0, 1) under dx=-y, dy=x
	if math.Abs(last[0]) > 1e-12 || math.Abs(last[1]-1) > 1e-12 {
		t.Errorf("quarter turn gave (%v, %v)", last[0], last[1])
	}
}

func TestLorenzStaysFinite(t *testing.T) {
	_, states := integrateFloat(t, problems.NewLorenz[coeff.Float](), []float64{1, 1, 1}, 10)
	last := states[len(states)-1]
	for i, v := range last {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("component %d diverged: %v", i, v)
		}
	}
}
