package bigfloat

import (
	"math/big"
	"slices"
)

// IntPow returns base^exp as an exact integer.
func IntPow(base int64, exp uint) *big.Int {
	return new(big.Int).Exp(big.NewInt(base), new(big.Int).SetUint64(uint64(exp)), nil)
}

// FactorialTable holds exact factorials for a sparse set of arguments. It is
// built in a single ascending pass so that the cost of the largest entry is
// shared by every smaller one.
type FactorialTable struct {
	values map[int64]*big.Int
}

// NewFactorialTable computes n! for every n in args.
func NewFactorialTable(args []int64) *FactorialTable {
	t := &FactorialTable{values: make(map[int64]*big.Int, len(args))}
	sorted := sortedUnique(args)
	acc := big.NewInt(1)
	var prev int64 = 1
	for _, n := range sorted {
		if n > prev {
			acc.Mul(acc, rangeProduct(prev+1, n))
			prev = n
		}
		t.values[n] = new(big.Int).Set(acc)
	}
	return t
}

// Get returns n! from the table, or nil when n was not requested.
func (t *FactorialTable) Get(n int64) *big.Int {
	return t.values[n]
}

func sortedUnique(args []int64) []int64 {
	seen := make(map[int64]struct{}, len(args))
	out := make([]int64, 0, len(args))
	for _, a := range args {
		if a < 0 {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}
