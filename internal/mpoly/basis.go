// Package mpoly implements dense truncated multivariate polynomials
// in a fixed number of variables up to a fixed total degree. They
// serve as the coefficient type for jet transport: a univariate Taylor
// polynomial in time whose coefficients are mpoly values propagates a
// whole box of initial conditions at once.
package mpoly

import "sync"

// Basis holds the monomial enumeration shared by every polynomial of
// a given (variables, degree) signature: the graded list of exponent
// vectors, per-degree offsets, the pairwise product index table and a
// binomial table. Bases are cached per signature.
type Basis struct {
	vars, deg int
	exps      [][]int
	start     []int   // start[k] = first monomial index of total degree k
	prod      [][]int // prod[i][j] = index of exps[i]+exps[j], -1 if truncated
	binom     [][]float64
	index     map[string]int
}

var (
	basisMu    sync.Mutex
	basisCache = map[[2]int]*Basis{}
)

// NewBasis returns the cached basis for the given number of variables
// and total degree.
func NewBasis(vars, deg int) *Basis {
	basisMu.Lock()
	defer basisMu.Unlock()
	if b, ok := basisCache[[2]int{vars, deg}]; ok {
		return b
	}
	b := buildBasis(vars, deg)
	basisCache[[2]int{vars, deg}] = b
	return b
}

func buildBasis(vars, deg int) *Basis {
	b := &Basis{vars: vars, deg: deg}
	b.start = make([]int, deg+2)
	for k := 0; k <= deg; k++ {
		b.start[k] = len(b.exps)
		appendDegree(&b.exps, make([]int, vars), 0, k)
	}
	b.start[deg+1] = len(b.exps)

	b.index = make(map[string]int, len(b.exps))
	for i, e := range b.exps {
		b.index[expKey(e)] = i
	}
	index := b.index

	m := len(b.exps)
	b.prod = make([][]int, m)
	sum := make([]int, vars)
	for i := 0; i < m; i++ {
		b.prod[i] = make([]int, m)
		for j := 0; j < m; j++ {
			total := 0
			for v := 0; v < vars; v++ {
				sum[v] = b.exps[i][v] + b.exps[j][v]
				total += sum[v]
			}
			if total > deg {
				b.prod[i][j] = -1
			} else {
				b.prod[i][j] = index[expKey(sum)]
			}
		}
	}

	b.binom = make([][]float64, deg+1)
	for n := 0; n <= deg; n++ {
		b.binom[n] = make([]float64, n+1)
		b.binom[n][0] = 1
		for k := 1; k <= n; k++ {
			if k == n {
				b.binom[n][k] = 1
			} else {
				b.binom[n][k] = b.binom[n-1][k-1] + b.binom[n-1][k]
			}
		}
	}
	return b
}

// appendDegree emits, in descending lexicographic order (x_0^rem
// first), every exponent vector
// whose entries from position v on sum to rem.
func appendDegree(out *[][]int, e []int, v, rem int) {
	if v == len(e)-1 {
		e[v] = rem
		cp := make([]int, len(e))
		copy(cp, e)
		*out = append(*out, cp)
		return
	}
	for d := rem; d >= 0; d-- {
		e[v] = d
		appendDegree(out, e, v+1, rem-d)
	}
	e[v] = 0
}

func expKey(e []int) string {
	k := make([]byte, len(e))
	for i, d := range e {
		k[i] = byte(d)
	}
	return string(k)
}

// Vars reports the number of variables.
func (b *Basis) Vars() int { return b.vars }

// Degree reports the truncation total degree.
func (b *Basis) Degree() int { return b.deg }

// Len reports the number of monomials.
func (b *Basis) Len() int { return len(b.exps) }

// Exponent returns the exponent vector of monomial i. The slice is
// shared; callers must not modify it.
func (b *Basis) Exponent(i int) []int { return b.exps[i] }

// OrderRange returns the half-open monomial index range of total
// degree k.
func (b *Basis) OrderRange(k int) (int, int) { return b.start[k], b.start[k+1] }

// LinearIndex returns the monomial index of the bare variable v.
func (b *Basis) LinearIndex(v int) int { return b.start[1] + v }

// MonomialDegree returns the total degree of monomial i.
func (b *Basis) MonomialDegree(i int) int {
	d := 0
	for _, e := range b.exps[i] {
		d += e
	}
	return d
}
