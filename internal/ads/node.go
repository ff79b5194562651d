package ads

import (
	"fmt"

	"github.com/san-kum/taylor/internal/mpoly"
	"github.com/san-kum/taylor/internal/poly"
)

// Node is one sub-domain of the initial-condition box. The
// perturbation variables are canonical, each ranging over [-1, 1];
// Lo/Hi record the physical box the canonical cube maps to. Children
// are owned by the node, the parent pointer is a plain back-reference,
// and nodes are never removed before the whole tree goes away.
type Node struct {
	Depth int
	T     float64
	Lo    []float64
	Hi    []float64

	// State holds one multivariate polynomial per degree of freedom,
	// expressed in the node's canonical variables.
	State []mpoly.TaylorN

	// StepPoly is the univariate-in-time solution polynomial of the
	// step that produced this node's children, kept when dense output
	// is requested.
	StepPoly []*poly.Taylor1[mpoly.TaylorN]

	Parent      *Node
	Left, Right *Node

	// SplitVar is the direction of the split that created the two
	// children, or -1 for a same-box extension.
	SplitVar int

	scratch *leafScratch
}

// NewRoot builds the tree root from the physical box and the initial
// polynomial state.
func NewRoot(lo, hi []float64, state []mpoly.TaylorN, t0 float64) (*Node, error) {
	if len(lo) != len(hi) {
		return nil, fmt.Errorf("ads: box bounds have lengths %d and %d", len(lo), len(hi))
	}
	for i := range lo {
		if hi[i] <= lo[i] {
			return nil, fmt.Errorf("ads: empty box in direction %d: [%g, %g]", i, lo[i], hi[i])
		}
	}
	return &Node{
		Lo:       append([]float64(nil), lo...),
		Hi:       append([]float64(nil), hi...),
		State:    state,
		T:        t0,
		SplitVar: -1,
	}, nil
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// Leaves collects the current leaves in depth-first order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.walk(&out)
	return out
}

func (n *Node) walk(out *[]*Node) {
	if n.IsLeaf() {
		*out = append(*out, n)
		return
	}
	if n.Left != nil {
		n.Left.walk(out)
	}
	if n.Right != nil {
		n.Right.walk(out)
	}
}

// Center returns the physical midpoint of the node's box.
func (n *Node) Center() []float64 {
	c := make([]float64, len(n.Lo))
	for i := range c {
		c[i] = 0.5 * (n.Lo[i] + n.Hi[i])
	}
	return c
}

// EvalCenter evaluates the node's state polynomials at the canonical
// box center.
func (n *Node) EvalCenter() []float64 {
	zero := make([]float64, len(n.Lo))
	out := make([]float64, len(n.State))
	for j, p := range n.State {
		out[j] = p.Eval(zero)
	}
	return out
}

// extend appends a single same-box child carrying the advanced state.
func (n *Node) extend(state []mpoly.TaylorN, t float64) *Node {
	child := &Node{
		Depth:    n.Depth + 1,
		T:        t,
		Lo:       n.Lo,
		Hi:       n.Hi,
		State:    state,
		Parent:   n,
		SplitVar: -1,
		scratch:  n.scratch,
	}
	n.scratch = nil
	n.Left = child
	return child
}

// split bisects the box along direction j and attaches two children
// holding the advanced state recomposed on each half. The canonical
// variable of the child is an affine reparameterization of the
// parent's: left xi = (xi' - 1)/2, right xi = (xi' + 1)/2.
func (n *Node) split(j int, state []mpoly.TaylorN, t float64) (*Node, *Node) {
	mid := 0.5 * (n.Lo[j] + n.Hi[j])

	lo := make([]mpoly.TaylorN, len(state))
	hi := make([]mpoly.TaylorN, len(state))
	for i, p := range state {
		lo[i] = p.SubstLinear(j, -0.5, 0.5)
		hi[i] = p.SubstLinear(j, 0.5, 0.5)
	}

	left := &Node{
		Depth:    n.Depth + 1,
		T:        t,
		Lo:       append([]float64(nil), n.Lo...),
		Hi:       append([]float64(nil), n.Hi...),
		State:    lo,
		Parent:   n,
		SplitVar: -1,
	}
	left.Hi[j] = mid

	right := &Node{
		Depth:    n.Depth + 1,
		T:        t,
		Lo:       append([]float64(nil), n.Lo...),
		Hi:       append([]float64(nil), n.Hi...),
		State:    hi,
		Parent:   n,
		SplitVar: -1,
	}
	right.Lo[j] = mid

	n.SplitVar = j
	n.scratch = nil
	n.Left, n.Right = left, right
	return left, right
}
