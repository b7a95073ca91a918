package series

import (
	"math/big"

	"github.com/agbru/picalc/internal/bigfloat"
)

// chudnovskyFactFamily evaluates every term from the factorial definition:
//
//	term(n) = (6n)!·(545140134n + 13591409) / ((n!)^3·(3n)!·(−640320)^(3n))
//
// The factorials of every index the run needs are computed once, in a
// single ascending pass, and shared read-only by all workers.
type chudnovskyFactFamily struct {
	*chudnovskyFamily
	table *bigfloat.FactorialTable
}

func newChudnovskyFactFamily(ctx bigfloat.Context, iterations int) *chudnovskyFactFamily {
	args := make([]int64, 0, 3*iterations)
	for n := int64(0); n < int64(iterations); n++ {
		args = append(args, n, 3*n, 6*n)
	}
	return &chudnovskyFactFamily{
		chudnovskyFamily: newChudnovskyFamily(ctx),
		table:            bigfloat.NewFactorialTable(args),
	}
}

func (f *chudnovskyFactFamily) Kind() Kind { return ChudnovskyFactorials }

func (f *chudnovskyFactFamily) NewState() State {
	ctx := f.ctx
	return &chudnovskyFactState{
		fam:   f,
		d:     ctx.New(),
		e:     ctx.New(),
		jumpD: ctx.New(),
		jumpE: ctx.New(),
		num:   ctx.New(),
		den:   ctx.New(),
		t:     ctx.New(),
	}
}

// factorial returns n! from the table, computing it when the run did not
// request that index.
func (f *chudnovskyFactFamily) factorial(n int64) *big.Int {
	if v := f.table.Get(n); v != nil {
		return v
	}
	return bigfloat.Factorial(n)
}

type chudnovskyFactState struct {
	fam    *chudnovskyFactFamily
	n      int
	stride int

	d, e         *big.Float // (−640320)^(3n), 545140134n + 13591409
	jumpD, jumpE *big.Float
	// temporaries
	num, den, t *big.Float
}

func (s *chudnovskyFactState) Seed(n, stride int) error {
	ctx := s.fam.ctx
	s.n, s.stride = n, stride
	s.d.SetInt(negC3(n))
	s.e.SetInt64(chudB*int64(n) + chudA)
	s.jumpD.SetInt(negC3(stride))
	s.jumpE.Set(ctx.NewInt64(chudB * int64(stride)))
	return nil
}

func (s *chudnovskyFactState) Step() {
	s.d.Mul(s.d, s.jumpD)
	s.e.Add(s.e, s.jumpE)
	s.n += s.stride
}

// cubedFactorial sets z = (n!)^3.
func (s *chudnovskyFactState) cubedFactorial(z *big.Float) {
	s.t.SetInt(s.fam.factorial(int64(s.n)))
	z.Mul(s.t, s.t)
	z.Mul(z, s.t)
}

func (s *chudnovskyFactState) Accumulate(sum *big.Float) {
	n := int64(s.n)
	s.num.SetInt(s.fam.factorial(6 * n))
	s.num.Mul(s.num, s.e)

	s.cubedFactorial(s.den)
	s.t.SetInt(s.fam.factorial(3 * n))
	s.den.Mul(s.den, s.t)
	s.den.Mul(s.den, s.d)

	s.num.Quo(s.num, s.den)
	sum.Add(sum, s.num)
}

func (s *chudnovskyFactState) Index() int { return s.n }

func (s *chudnovskyFactState) Values() []*big.Float {
	ctx := s.fam.ctx
	n := int64(s.n)
	cube := ctx.New()
	s.cubedFactorial(cube)
	return []*big.Float{
		ctx.NewInt(s.fam.factorial(6 * n)),
		cube,
		ctx.NewInt(s.fam.factorial(3 * n)),
		ctx.New().Set(s.d),
		ctx.New().Set(s.e),
	}
}
