//go:build gmp

// Exact factorials backed by libgmp. Building with -tags=gmp requires the
// library headers (libgmp-dev on Debian, gmp on Homebrew).

package bigfloat

import (
	"math/big"

	"github.com/ncw/gmp"
)

// Factorial returns n! as an exact integer. Negative n yields 1.
func Factorial(n int64) *big.Int {
	if n < 2 {
		return big.NewInt(1)
	}
	return rangeProduct(1, n)
}

// rangeProduct returns lo·(lo+1)·…·hi, computed with GMP and converted back
// to a math/big integer.
func rangeProduct(lo, hi int64) *big.Int {
	acc := gmp.NewInt(1)
	if lo > hi {
		return big.NewInt(1)
	}
	factor := gmp.NewInt(0)
	for i := lo; i <= hi; i++ {
		if i <= 1<<32-1 && i > 0 {
			acc.MulUint32(acc, uint32(i))
			continue
		}
		factor.SetInt64(i)
		acc.Mul(acc, factor)
	}
	return gmpToBig(acc)
}

func gmpToBig(g *gmp.Int) *big.Int {
	return new(big.Int).SetBytes(g.Bytes())
}
