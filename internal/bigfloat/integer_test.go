package bigfloat

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFactorialSmallValues(t *testing.T) {
	t.Parallel()
	want := []int64{1, 1, 2, 6, 24, 120, 720, 5040}
	for n, w := range want {
		if got := Factorial(int64(n)); got.Cmp(big.NewInt(w)) != 0 {
			t.Errorf("%d! = %s, want %d", n, got, w)
		}
	}
	if got := Factorial(-4); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("(-4)! = %s, want 1", got)
	}
}

func TestFactorialTableMatchesFactorial(t *testing.T) {
	t.Parallel()
	args := []int64{30, 0, 6, 18, 6, 3, 90}
	table := NewFactorialTable(args)
	for _, n := range args {
		if got, want := table.Get(n), Factorial(n); got.Cmp(want) != 0 {
			t.Errorf("table %d! = %s, want %s", n, got, want)
		}
	}
	if table.Get(7) != nil {
		t.Error("unrequested entry should be nil")
	}
}

func TestFactorialRecurrenceProperty(t *testing.T) {
	t.Parallel()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("(n+1)! = (n+1)·n!", prop.ForAll(
		func(n int64) bool {
			lhs := Factorial(n + 1)
			rhs := new(big.Int).Mul(big.NewInt(n+1), Factorial(n))
			return lhs.Cmp(rhs) == 0
		},
		gen.Int64Range(0, 400),
	))

	properties.TestingRun(t)
}

func TestIntPow(t *testing.T) {
	t.Parallel()
	if got := IntPow(-640320, 3); got.Cmp(big.NewInt(-262537412640768000)) != 0 {
		t.Errorf("(-640320)^3 = %s", got)
	}
	if got := IntPow(16, 0); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("16^0 = %s", got)
	}
}
