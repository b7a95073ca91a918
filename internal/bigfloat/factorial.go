//go:build !gmp

package bigfloat

import "math/big"

// Factorial returns n! as an exact integer. Negative n yields 1.
func Factorial(n int64) *big.Int {
	if n < 2 {
		return big.NewInt(1)
	}
	return new(big.Int).MulRange(1, n)
}

// rangeProduct returns lo·(lo+1)·…·hi.
func rangeProduct(lo, hi int64) *big.Int {
	return new(big.Int).MulRange(lo, hi)
}
