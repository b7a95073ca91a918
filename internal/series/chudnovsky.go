package series

import (
	"math/big"

	"github.com/agbru/picalc/internal/bigfloat"
)

// Chudnovsky:
//
//	1/π = 12/640320^(3/2) · Σ (−1)^n (6n)! (13591409 + 545140134n) / ((3n)! (n!)^3 640320^(3n))
//
// rearranged as π = 426880·√10005 / Σ a(n)·c(n)/b(n) with
//
//	a(n) = (6n)! / ((n!)^3 (3n)!)
//	b(n) = (−640320)^(3n)
//	c(n) = 545140134n + 13591409
//
// and the unit recurrences
//
//	a(n+1) = a(n)·(12n+10)(12n+6)(12n+2)/(n+1)^3
//	b(n+1) = b(n)·(−640320)^3
//	c(n+1) = c(n) + 545140134
const (
	chudA = 13591409
	chudB = 545140134
	chudC = 640320
	chudD = 426880
	chudE = 10005

	// digitsPerChudnovskyTerm rounds down the ~14.18 decimals each term adds.
	digitsPerChudnovskyTerm = 14
)

// multinomial returns (6n)!/((n!)^3 (3n)!) exactly.
func multinomial(n int64) *big.Int {
	fn := bigfloat.Factorial(n)
	den := new(big.Int).Mul(fn, fn)
	den.Mul(den, fn)
	den.Mul(den, bigfloat.Factorial(3*n))
	return den.Quo(bigfloat.Factorial(6*n), den)
}

// negC3 returns (−640320)^(3·k).
func negC3(k int) *big.Int {
	return bigfloat.IntPow(-chudC, uint(3*k))
}

type chudnovskyFamily struct {
	ctx   bigfloat.Context
	c3    *big.Float
	c3Int *big.Int
}

func newChudnovskyFamily(ctx bigfloat.Context) *chudnovskyFamily {
	c3Int := negC3(1)
	return &chudnovskyFamily{ctx: ctx, c3: ctx.NewInt(c3Int), c3Int: c3Int}
}

func (f *chudnovskyFamily) Kind() Kind { return Chudnovsky }

func (f *chudnovskyFamily) NewState() State {
	return &chudnovskyState{
		fam:  f,
		a:    f.ctx.New(),
		b:    f.ctx.New(),
		c:    f.ctx.New(),
		t:    f.ctx.New(),
		term: f.ctx.New(),
	}
}

// Finalize returns 426880·√10005 / sum.
func (f *chudnovskyFamily) Finalize(sum *big.Float) *big.Float {
	pi := f.ctx.Sqrt(f.ctx.NewInt64(chudE))
	pi.Mul(pi, f.ctx.NewInt64(chudD))
	return pi.Quo(pi, sum)
}

type chudnovskyState struct {
	fam    *chudnovskyFamily
	n      int
	stride int
	f      int64 // 12n

	a, b, c  *big.Float
	num, den big.Int
	k        big.Int
	// temporaries
	t, term *big.Float
}

func (s *chudnovskyState) Seed(n, stride int) error {
	s.n, s.stride = n, stride
	s.f = 12 * int64(n)
	s.a.SetInt(multinomial(int64(n)))
	s.b.SetInt(negC3(n))
	s.c.SetInt64(chudB*int64(n) + chudA)
	return nil
}

// Step applies the unit recurrence stride times.
func (s *chudnovskyState) Step() {
	for i := 0; i < s.stride; i++ {
		s.unitStep()
	}
}

func (s *chudnovskyState) unitStep() {
	ratioNumerator(&s.num, &s.k, s.f)
	ratioDenominator(&s.den, &s.k, int64(s.n)+1)
	s.t.SetInt(&s.num)
	s.a.Mul(s.a, s.t)
	s.t.SetInt(&s.den)
	s.a.Quo(s.a, s.t)
	s.b.Mul(s.b, s.fam.c3)
	s.t.SetInt64(chudB)
	s.c.Add(s.c, s.t)
	s.f += 12
	s.n++
}

// ratioNumerator sets z = (f+10)(f+6)(f+2).
func ratioNumerator(z, tmp *big.Int, f int64) {
	z.SetInt64(f + 10)
	z.Mul(z, tmp.SetInt64(f+6))
	z.Mul(z, tmp.SetInt64(f+2))
}

// ratioDenominator sets z = m^3.
func ratioDenominator(z, tmp *big.Int, m int64) {
	tmp.SetInt64(m)
	z.Mul(tmp, tmp)
	z.Mul(z, tmp)
}

func (s *chudnovskyState) Accumulate(sum *big.Float) {
	s.term.Mul(s.a, s.c)
	s.term.Quo(s.term, s.b)
	sum.Add(sum, s.term)
}

func (s *chudnovskyState) Index() int { return s.n }

func (s *chudnovskyState) Values() []*big.Float {
	return copyAll(s.fam.ctx, s.a, s.b, s.c)
}

// chudnovskyIntFamily keeps a(n), b(n) and c(n) as exact integers and only
// rounds when forming each term.
type chudnovskyIntFamily struct {
	*chudnovskyFamily
}

func (f *chudnovskyIntFamily) Kind() Kind { return ChudnovskyInt }

func (f *chudnovskyIntFamily) NewState() State {
	return &chudnovskyIntState{
		fam:  f.chudnovskyFamily,
		t:    f.ctx.New(),
		term: f.ctx.New(),
	}
}

type chudnovskyIntState struct {
	fam    *chudnovskyFamily
	n      int
	stride int
	f      int64

	a, b, c  big.Int
	num, den big.Int
	k        big.Int
	t, term  *big.Float
}

func (s *chudnovskyIntState) Seed(n, stride int) error {
	s.n, s.stride = n, stride
	s.f = 12 * int64(n)
	s.a.Set(multinomial(int64(n)))
	s.b.Set(negC3(n))
	s.c.SetInt64(chudB*int64(n) + chudA)
	return nil
}

func (s *chudnovskyIntState) Step() {
	for i := 0; i < s.stride; i++ {
		ratioNumerator(&s.num, &s.k, s.f)
		ratioDenominator(&s.den, &s.k, int64(s.n)+1)
		s.a.Mul(&s.a, &s.num)
		s.a.Quo(&s.a, &s.den)
		s.b.Mul(&s.b, s.fam.c3Int)
		s.c.Add(&s.c, s.k.SetInt64(chudB))
		s.f += 12
		s.n++
	}
}

func (s *chudnovskyIntState) Accumulate(sum *big.Float) {
	s.k.Mul(&s.a, &s.c)
	s.t.SetInt(&s.k)
	s.term.SetInt(&s.b)
	s.t.Quo(s.t, s.term)
	sum.Add(sum, s.t)
}

func (s *chudnovskyIntState) Index() int { return s.n }

func (s *chudnovskyIntState) Values() []*big.Float {
	ctx := s.fam.ctx
	return []*big.Float{ctx.NewInt(&s.a), ctx.NewInt(&s.b), ctx.NewInt(&s.c)}
}
