package metrics

import (
	"math"
	"testing"
)

func TestEnergyDrift(t *testing.T) {
	energy := func(x []float64) float64 { return x[0] }
	m := NewEnergyDrift(energy)

	m.Observe([]float64{2.0}, 0)
	m.Observe([]float64{2.1}, 1)
	m.Observe([]float64{1.9}, 2)

	want := 0.1 / 2.0
	if math.Abs(m.Value()-want) > 1e-15 {
		t.Errorf("drift %v, want %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset must clear the drift")
	}
}

func TestSpectrumSum(t *testing.T) {
	m := NewSpectrumSum()
	m.Observe([]float64{0.5, -0.2, -0.3}, 1)
	if math.Abs(m.Value()) > 1e-15 {
		t.Errorf("sum %v, want 0", m.Value())
	}
	m.Observe([]float64{0.5, -0.2}, 2)
	if math.Abs(m.Value()-0.3) > 1e-15 {
		t.Errorf("sum %v, want 0.3", m.Value())
	}
}
