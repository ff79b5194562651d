package coeff

import (
	"math"
	"testing"
)

func TestBigArithmetic(t *testing.T) {
	a := NewBig(1.5, 128)
	b := NewBig(2.25, 128)

	if got := a.Add(b).Float64(); got != 3.75 {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Mul(b).Float64(); got != 3.375 {
		t.Errorf("Mul: got %v", got)
	}
	if got := a.Sub(b).Float64(); got != -0.75 {
		t.Errorf("Sub: got %v", got)
	}
	if got := b.DivN(3).Float64(); got != 0.75 {
		t.Errorf("DivN: got %v", got)
	}
	if got := a.Scale(2).Float64(); got != 3 {
		t.Errorf("Scale: got %v", got)
	}
	if a.Sign() != 1 || a.Neg().Sign() != -1 || a.Zero().Sign() != 0 {
		t.Error("Sign misreported")
	}
}

func TestBigElementaryMatchesFloat64(t *testing.T) {
	xs := []float64{0.1, 0.5, 1.0, 2.5, -1.2, 10.0, -7.7}
	for _, x := range xs {
		b := NewBig(x, 64)
		if got, want := b.Exp().Float64(), math.Exp(x); !close64(got, want) {
			t.Errorf("Exp(%v): got %v want %v", x, got, want)
		}
		if got, want := b.Sin().Float64(), math.Sin(x); !close64(got, want) {
			t.Errorf("Sin(%v): got %v want %v", x, got, want)
		}
		if got, want := b.Cos().Float64(), math.Cos(x); !close64(got, want) {
			t.Errorf("Cos(%v): got %v want %v", x, got, want)
		}
		if x > 0 {
			if got, want := b.Log().Float64(), math.Log(x); !close64(got, want) {
				t.Errorf("Log(%v): got %v want %v", x, got, want)
			}
			if got, want := b.Sqrt().Float64(), math.Sqrt(x); !close64(got, want) {
				t.Errorf("Sqrt(%v): got %v want %v", x, got, want)
			}
		}
	}
}

func close64(a, b float64) bool {
	return math.Abs(a-b) <= 1e-14*math.Max(1, math.Abs(b))
}

func TestBigTrigIdentityHighPrecision(t *testing.T) {
	// sin^2 + cos^2 = 1 must hold to nearly full 256-bit precision
	for _, x := range []float64{0.3, 1.3, 3.0, 12.5, -5.25} {
		b := NewBig(x, 256)
		s, c := b.Sin(), b.Cos()
		one := s.Mul(s).Add(c.Mul(c))
		diff := one.Sub(b.One()).Norm()
		if diff > 1e-75 {
			t.Errorf("identity at x=%v off by %g", x, diff)
		}
	}
}

func TestBigExpLogRoundTrip(t *testing.T) {
	b := NewBig(3.75, 256)
	back := b.Log().Exp()
	if diff := back.Sub(b).Norm(); diff > 1e-74 {
		t.Errorf("exp(log(x)) off by %g", diff)
	}
}

func TestBigPi(t *testing.T) {
	pi := BigPi(64)
	f, _ := pi.Float64()
	if math.Abs(f-math.Pi) > 1e-15 {
		t.Errorf("pi: got %v", f)
	}
}
