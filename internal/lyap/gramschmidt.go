// Package lyap integrates the variational equations alongside the
// state and produces time-averaged Lyapunov exponents via per-step
// reorthonormalization of the fundamental matrix.
package lyap

import "gonum.org/v1/gonum/mat"

// ModifiedGramSchmidt factors a into Q*R with orthonormal Q and
// upper-triangular R with positive diagonal. Columns are processed
// one at a time and every later column is immediately deflated
// against the freshly normalized one, which keeps the factorization
// stable for near-linearly-dependent columns.
func ModifiedGramSchmidt(q, r *mat.Dense, a mat.Matrix) {
	n, m := a.Dims()
	q.Copy(a)
	r.Zero()
	for j := 0; j < m; j++ {
		norm := mat.Norm(q.ColView(j), 2)
		r.Set(j, j, norm)
		for i := 0; i < n; i++ {
			q.Set(i, j, q.At(i, j)/norm)
		}
		for k := j + 1; k < m; k++ {
			dot := mat.Dot(q.ColView(j), q.ColView(k))
			r.Set(j, k, dot)
			for i := 0; i < n; i++ {
				q.Set(i, k, q.At(i, k)-dot*q.At(i, j))
			}
		}
	}
}

// ClassicalGramSchmidt is the textbook variant: each column is
// deflated against all previously orthonormalized columns in one
// sweep. Cheaper to vectorize but loses orthogonality faster; use the
// modified variant when the columns are close to dependent.
func ClassicalGramSchmidt(q, r *mat.Dense, a mat.Matrix) {
	n, m := a.Dims()
	q.Copy(a)
	r.Zero()
	col := make([]float64, n)
	for j := 0; j < m; j++ {
		mat.Col(col, j, a)
		for i := 0; i < j; i++ {
			dot := 0.0
			for k := 0; k < n; k++ {
				dot += q.At(k, i) * col[k]
			}
			r.Set(i, j, dot)
		}
		for k := 0; k < n; k++ {
			v := col[k]
			for i := 0; i < j; i++ {
				v -= r.At(i, j) * q.At(k, i)
			}
			q.Set(k, j, v)
		}
		norm := mat.Norm(q.ColView(j), 2)
		r.Set(j, j, norm)
		for k := 0; k < n; k++ {
			q.Set(k, j, q.At(k, j)/norm)
		}
	}
}
