package series

import (
	"math/big"

	"github.com/agbru/picalc/internal/bigfloat"
)

// Craig Wood's form of the Chudnovsky series:
//
//	a(0) = 1
//	a(n) = a(n−1) · −(6n−5)(2n−1)(6n−1) / (n^3 · 10939058860032000)
//	π    = 426880·√10005 / Σ a(n)·(13591409 + 545140134n)
//
// Each a(n) depends on a(n−1), so the range can only be walked with unit
// stride by a single worker.
const craigWoodDivisor = 10939058860032000 // 640320^3 / 24

type craigWoodFamily struct {
	*chudnovskyFamily
}

func (f *craigWoodFamily) Kind() Kind { return CraigWood }

func (f *craigWoodFamily) NewState() State {
	return &craigWoodState{
		ctx:  f.ctx,
		a:    f.ctx.New(),
		t:    f.ctx.New(),
		term: f.ctx.New(),
	}
}

type craigWoodState struct {
	ctx bigfloat.Context
	n   int

	a        *big.Float
	num, den big.Int
	k        big.Int
	// temporaries
	t, term *big.Float
}

// craigWoodTerm returns a(n) = (−1)^n (6n)! / ((3n)! (n!)^3 640320^(3n)) as
// an exact fraction.
func craigWoodTerm(n int64) (num, den *big.Int) {
	num = bigfloat.Factorial(6 * n)
	if n%2 != 0 {
		num.Neg(num)
	}
	fn := bigfloat.Factorial(n)
	den = new(big.Int).Mul(fn, fn)
	den.Mul(den, fn)
	den.Mul(den, bigfloat.Factorial(3*n))
	den.Mul(den, bigfloat.IntPow(chudC, uint(3*n)))
	return num, den
}

func (s *craigWoodState) Seed(n, stride int) error {
	if stride != 1 {
		return ErrStrideUnsupported
	}
	s.n = n
	num, den := craigWoodTerm(int64(n))
	s.a.Set(s.ctx.NewRat(num, den))
	return nil
}

func (s *craigWoodState) Step() {
	s.n++
	n := int64(s.n)
	s.num.SetInt64(-(6*n - 5))
	s.num.Mul(&s.num, s.k.SetInt64(2*n-1))
	s.num.Mul(&s.num, s.k.SetInt64(6*n-1))
	ratioDenominator(&s.den, &s.k, n)
	s.den.Mul(&s.den, s.k.SetInt64(craigWoodDivisor))

	s.t.SetInt(&s.num)
	s.a.Mul(s.a, s.t)
	s.t.SetInt(&s.den)
	s.a.Quo(s.a, s.t)
}

func (s *craigWoodState) Accumulate(sum *big.Float) {
	s.t.SetInt64(chudA + chudB*int64(s.n))
	s.term.Mul(s.a, s.t)
	sum.Add(sum, s.term)
}

func (s *craigWoodState) Index() int { return s.n }

func (s *craigWoodState) Values() []*big.Float {
	return copyAll(s.ctx, s.a)
}
