// Package bigfloat provides the arbitrary-precision numeric capability used by
// every series. Precision is never global: each run builds one Context and
// allocates all of its values through it, so independent runs with different
// precisions can execute concurrently.
package bigfloat

import (
	"math"
	"math/big"
)

// BitsPerDecimal is the decimal-to-bit expansion applied to a requested
// precision. It is intentionally larger than log2(10) and must be kept as is:
// the iteration counts of every series were tuned against it.
const BitsPerDecimal = 8

// Context fixes the precision and rounding mode of every value of a run.
type Context struct {
	Prec uint
	Mode big.RoundingMode
}

// ForDecimals returns the context used to compute π to the given number of
// decimals with the given rounding mode.
func ForDecimals(decimals int, mode big.RoundingMode) Context {
	if decimals < 1 {
		decimals = 1
	}
	return Context{Prec: uint(decimals) * BitsPerDecimal, Mode: mode}
}

// New returns a zero value at the context precision.
func (c Context) New() *big.Float {
	return new(big.Float).SetPrec(c.Prec).SetMode(c.Mode)
}

// NewInt64 returns v at the context precision.
func (c Context) NewInt64(v int64) *big.Float {
	return c.New().SetInt64(v)
}

// NewInt returns v at the context precision. Values wider than Prec are
// rounded with the context mode.
func (c Context) NewInt(v *big.Int) *big.Float {
	return c.New().SetInt(v)
}

// NewRat returns num/den rounded once at the context precision.
func (c Context) NewRat(num, den *big.Int) *big.Float {
	return c.New().SetRat(new(big.Rat).SetFrac(num, den))
}

// Pow2 returns 2^exp. The result is exact for any exponent representable by
// big.Float.
func (c Context) Pow2(exp int) *big.Float {
	return c.New().SetMantExp(c.NewInt64(1), exp)
}

// PowUint returns x^n by binary exponentiation at the context precision.
func (c Context) PowUint(x *big.Float, n uint) *big.Float {
	result := c.NewInt64(1)
	base := c.New().Set(x)
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}
		n >>= 1
		if n > 0 {
			base.Mul(base, base)
		}
	}
	return result
}

// Sqrt returns √x at the context precision.
func (c Context) Sqrt(x *big.Float) *big.Float {
	return c.New().Sqrt(x)
}

// Decimals reports how many decimal digits the context precision can
// represent, floor(Prec·log10(2)).
func (c Context) Decimals() int {
	return int(float64(c.Prec) * math.Log10(2))
}

// Format renders x with exactly decimals digits after the point.
func Format(x *big.Float, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return x.Text('f', decimals)
}
