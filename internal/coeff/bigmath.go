package coeff

import (
	"math"
	"math/big"
)

// Elementary functions on big.Float. Each works at the operand's
// precision plus guard bits and rounds the result back down.

const guardBits = 64

// piDigits is π to 399 decimal places, enough for 1100-bit precision.
const piDigits = "3.1415926535897932384626433832795028841971693993751" +
	"0582097494459230781640628620899862803482534211706798214808651" +
	"3282306647093844609550582231725359408128481117450284102701938" +
	"5211055596446229489549303819644288109756659334461284756482337" +
	"8678316527120190914564856692346034861045432664821339360726024" +
	"9141273724587006606315588174881520920962829254091715364367892" +
	"590360011330530548820466521384146951941511609"

// BigPi returns π at the given precision (at most 1100 bits).
func BigPi(prec uint) *big.Float {
	pi, _ := new(big.Float).SetPrec(prec).SetString(piDigits)
	return pi
}

// bigExp computes e**x by argument halving followed by the Maclaurin
// series and repeated squaring.
func bigExp(x *big.Float) *big.Float {
	prec := x.Prec()
	wp := prec + guardBits
	y := new(big.Float).SetPrec(wp).Set(x)

	quarter := new(big.Float).SetPrec(wp).SetFloat64(0.25)
	half := new(big.Float).SetPrec(wp).SetFloat64(0.5)
	abs := new(big.Float).SetPrec(wp)

	halvings := 0
	for abs.Abs(y).Cmp(quarter) > 0 {
		y.Mul(y, half)
		halvings++
	}

	sum := new(big.Float).SetPrec(wp).SetInt64(1)
	term := new(big.Float).SetPrec(wp).SetInt64(1)
	den := new(big.Float).SetPrec(wp)
	for n := int64(1); ; n++ {
		term.Mul(term, y)
		den.SetInt64(n)
		term.Quo(term, den)
		sum.Add(sum, term)
		if converged(term, sum, wp) {
			break
		}
	}
	for i := 0; i < halvings; i++ {
		sum.Mul(sum, sum)
	}
	return new(big.Float).SetPrec(prec).Set(sum)
}

// bigLog computes the natural logarithm of x > 0 via mantissa/exponent
// decomposition and a Newton iteration on exp.
func bigLog(x *big.Float) *big.Float {
	prec := x.Prec()
	wp := prec + guardBits
	if x.Sign() <= 0 {
		return new(big.Float).SetPrec(prec).SetInf(true)
	}

	m := new(big.Float).SetPrec(wp)
	e := x.MantExp(m) // x = m * 2**e, m in [0.5, 1)

	lnm := newtonLog(m, wp)
	ln2 := newtonLog(new(big.Float).SetPrec(wp).SetInt64(2), wp)
	ln2.Mul(ln2, new(big.Float).SetPrec(wp).SetInt64(int64(e)))
	lnm.Add(lnm, ln2)
	return new(big.Float).SetPrec(prec).Set(lnm)
}

// newtonLog solves exp(y) = m for y, starting from the float64
// logarithm. Each iteration roughly doubles the correct digits.
func newtonLog(m *big.Float, wp uint) *big.Float {
	mf, _ := m.Float64()
	y := new(big.Float).SetPrec(wp).SetFloat64(math.Log(mf))

	iters := 2
	for digits := uint(50); digits < wp; digits *= 2 {
		iters++
	}
	t := new(big.Float).SetPrec(wp)
	one := new(big.Float).SetPrec(wp).SetInt64(1)
	for i := 0; i < iters; i++ {
		// y <- y + m*exp(-y) - 1
		t.Neg(y)
		t.Set(bigExp(t))
		t.Mul(t, m)
		t.Sub(t, one)
		y.Add(y, t)
	}
	return y
}

func bigSin(x *big.Float) *big.Float { return bigSinCos(x, false) }
func bigCos(x *big.Float) *big.Float { return bigSinCos(x, true) }

// bigSinCos reduces x modulo 2π and sums the Maclaurin series.
func bigSinCos(x *big.Float, cosine bool) *big.Float {
	prec := x.Prec()
	wp := prec + guardBits
	y := new(big.Float).SetPrec(wp).Set(x)

	twoPi := BigPi(wp)
	twoPi.Mul(twoPi, new(big.Float).SetPrec(wp).SetInt64(2))

	q := new(big.Float).SetPrec(wp).Quo(y, twoPi)
	qi, _ := q.Int(nil)
	if qi.Sign() != 0 {
		t := new(big.Float).SetPrec(wp).SetInt(qi)
		t.Mul(t, twoPi)
		y.Sub(y, t)
	}

	y2 := new(big.Float).SetPrec(wp).Mul(y, y)
	y2.Neg(y2)

	sum := new(big.Float).SetPrec(wp)
	term := new(big.Float).SetPrec(wp)
	var k0 int64
	if cosine {
		sum.SetInt64(1)
		term.SetInt64(1)
		k0 = 2 // next factorial denominators: (k-1)*k = 1*2, 3*4, ...
	} else {
		sum.Set(y)
		term.Set(y)
		k0 = 3 // 2*3, 4*5, ...
	}
	den := new(big.Float).SetPrec(wp)
	for k := k0; ; k += 2 {
		term.Mul(term, y2)
		den.SetInt64((k - 1) * k)
		term.Quo(term, den)
		sum.Add(sum, term)
		if converged(term, sum, wp) {
			break
		}
	}
	return new(big.Float).SetPrec(prec).Set(sum)
}

// converged reports whether term no longer affects sum at working
// precision.
func converged(term, sum *big.Float, wp uint) bool {
	if term.Sign() == 0 {
		return true
	}
	if sum.Sign() == 0 {
		return false
	}
	return sum.MantExp(nil)-term.MantExp(nil) > int(wp)
}
