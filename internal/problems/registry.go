package problems

import (
	"fmt"
	"sort"

	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/lyap"
	"github.com/san-kum/taylor/internal/mpoly"
	"github.com/san-kum/taylor/internal/taylor"
)

// Entry describes a named problem as the CLI consumes it: the float
// instantiation, the jet-transport instantiation for the Lyapunov AD
// path, an optional hand-written Jacobian, a default initial state
// and an optional first integral for diagnostics.
type Entry struct {
	Name     string
	New      func() taylor.System[coeff.Float]
	NewAD    func() taylor.System[mpoly.TaylorN]
	Jacobian lyap.Jacobian
	X0       []float64
	Energy   func([]float64) float64
}

// Registry maps problem names to their definitions.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns the registry of built-in problems.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Entry)}

	r.Register(Entry{
		Name:  "exponential",
		New:   func() taylor.System[coeff.Float] { return NewExponential[coeff.Float](1) },
		NewAD: func() taylor.System[mpoly.TaylorN] { return NewExponential[mpoly.TaylorN](1) },
		X0:    []float64{1},
	})
	r.Register(Entry{
		Name:   "harmonic",
		New:    func() taylor.System[coeff.Float] { return NewHarmonic[coeff.Float]() },
		NewAD:  func() taylor.System[mpoly.TaylorN] { return NewHarmonic[mpoly.TaylorN]() },
		X0:     []float64{1, 0},
		Energy: Harmonic[coeff.Float]{}.Energy,
	})
	r.Register(Entry{
		Name:   "pendulum",
		New:    func() taylor.System[coeff.Float] { return NewPendulum[coeff.Float]() },
		NewAD:  func() taylor.System[mpoly.TaylorN] { return NewPendulum[mpoly.TaylorN]() },
		X0:     []float64{1.3, 0},
		Energy: Pendulum[coeff.Float]{}.Energy,
	})
	r.Register(Entry{
		Name:     "henonheiles",
		New:      func() taylor.System[coeff.Float] { return NewHenonHeiles[coeff.Float]() },
		NewAD:    func() taylor.System[mpoly.TaylorN] { return NewHenonHeiles[mpoly.TaylorN]() },
		Jacobian: HenonHeilesJacobian,
		X0:       HenonHeilesInit(0.125),
		Energy:   HenonHeiles[coeff.Float]{}.Energy,
	})
	r.Register(Entry{
		Name:  "lorenz",
		New:   func() taylor.System[coeff.Float] { return NewLorenz[coeff.Float]() },
		NewAD: func() taylor.System[mpoly.TaylorN] { return NewLorenz[mpoly.TaylorN]() },
		X0:    []float64{1, 1, 1},
	})
	r.Register(Entry{
		Name:   "kepler",
		New:    func() taylor.System[coeff.Float] { return NewKepler[coeff.Float]() },
		NewAD:  func() taylor.System[mpoly.TaylorN] { return NewKepler[mpoly.TaylorN]() },
		X0:     []float64{1, 0, 0, 1},
		Energy: Kepler[coeff.Float]{}.Energy,
	})
	r.Register(Entry{
		Name:  "rotation",
		New:   func() taylor.System[coeff.Float] { return NewRotation[coeff.Float]() },
		NewAD: func() taylor.System[mpoly.TaylorN] { return NewRotation[mpoly.TaylorN]() },
		X0:    []float64{1, 0},
	})
	return r
}

// Register adds or replaces an entry.
func (r *Registry) Register(e Entry) { r.entries[e.Name] = e }

// Get looks up a problem by name.
func (r *Registry) Get(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown problem: %s", name)
	}
	return e, nil
}

// Names lists the registered problems in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
