package series

import (
	"math/big"

	"github.com/agbru/picalc/internal/bigfloat"
)

// Bellard:
//
//	2^6·π = Σ (−1)^n/1024^n · (−32/(4n+1) − 1/(4n+3) + 256/(10n+1) − 64/(10n+3)
//	                          − 4/(10n+5) − 4/(10n+7) + 1/(10n+9))
//
// Dependencies: m(n) = (−1)^n/1024^n, a(n) = 4n and b(n) = 10n.
// The recursive variant multiplies m by ±1/1024^stride; the shift variant
// rebuilds m = ±1/2^(10n) from the index at every step.
type bellardFamily struct {
	ctx   bigfloat.Context
	shift bool
}

func (f *bellardFamily) Kind() Kind {
	if f.shift {
		return BellardShift
	}
	return Bellard
}

func (f *bellardFamily) NewState() State {
	return &bellardState{
		ctx:   f.ctx,
		shift: f.shift,
		one:   f.ctx.NewInt64(1),
		m:     f.ctx.New(),
		jump:  f.ctx.New(),
		q:     f.ctx.New(),
		d:     f.ctx.New(),
		term:  f.ctx.New(),
	}
}

// Finalize divides the sum by 2^6.
func (f *bellardFamily) Finalize(sum *big.Float) *big.Float {
	pi := f.ctx.New().Set(sum)
	return pi.SetMantExp(pi, -6)
}

type bellardState struct {
	ctx    bigfloat.Context
	shift  bool
	n      int
	stride int

	one     *big.Float
	m, jump *big.Float
	a, b    int64
	jumpA   int64
	jumpB   int64
	// temporaries
	q, d, term *big.Float
}

// signedPow1024 sets z to (−1)^n / 1024^n in place.
func (s *bellardState) signedPow1024(z *big.Float, n int) {
	z.SetMantExp(s.one, -10*n)
	if n%2 != 0 {
		z.Neg(z)
	}
}

func (s *bellardState) Seed(n, stride int) error {
	s.n, s.stride = n, stride
	s.signedPow1024(s.m, n)
	s.signedPow1024(s.jump, stride)
	s.a = 4 * int64(n)
	s.b = 10 * int64(n)
	s.jumpA = 4 * int64(stride)
	s.jumpB = 10 * int64(stride)
	return nil
}

func (s *bellardState) Step() {
	s.n += s.stride
	if s.shift {
		s.signedPow1024(s.m, s.n)
	} else {
		s.m.Mul(s.m, s.jump)
	}
	s.a += s.jumpA
	s.b += s.jumpB
}

func (s *bellardState) Accumulate(sum *big.Float) {
	s.term.SetInt64(0)
	s.addQuo(-32, s.a+1)
	s.addQuo(-1, s.a+3)
	s.addQuo(256, s.b+1)
	s.addQuo(-64, s.b+3)
	s.addQuo(-4, s.b+5)
	s.addQuo(-4, s.b+7)
	s.addQuo(1, s.b+9)
	s.term.Mul(s.term, s.m)
	sum.Add(sum, s.term)
}

func (s *bellardState) addQuo(num, den int64) {
	s.q.SetInt64(num)
	s.d.SetInt64(den)
	s.q.Quo(s.q, s.d)
	s.term.Add(s.term, s.q)
}

func (s *bellardState) Index() int { return s.n }

func (s *bellardState) Values() []*big.Float {
	return copyAll(s.ctx, s.m, s.ctx.NewInt64(s.a), s.ctx.NewInt64(s.b))
}
