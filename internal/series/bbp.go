package series

import (
	"math/big"

	"github.com/agbru/picalc/internal/bigfloat"
)

// BBP:
//
//	π = Σ (1/16)^n · (4/(8n+1) − 2/(8n+4) − 1/(8n+5) − 1/(8n+6))
//
// The only dependency is m(n) = (1/16)^n, an exact power of two.
type bbpFamily struct {
	ctx bigfloat.Context
}

func (f *bbpFamily) Kind() Kind { return BBP }

func (f *bbpFamily) NewState() State {
	return &bbpState{
		ctx:  f.ctx,
		m:    f.ctx.New(),
		jump: f.ctx.New(),
		q:    f.ctx.New(),
		d:    f.ctx.New(),
		term: f.ctx.New(),
	}
}

func (f *bbpFamily) Finalize(sum *big.Float) *big.Float {
	return f.ctx.New().Set(sum)
}

type bbpState struct {
	ctx    bigfloat.Context
	n      int
	stride int

	m, jump *big.Float
	// temporaries
	q, d, term *big.Float
}

func (s *bbpState) Seed(n, stride int) error {
	s.n, s.stride = n, stride
	s.m.Set(s.ctx.Pow2(-4 * n))
	s.jump.Set(s.ctx.Pow2(-4 * stride))
	return nil
}

func (s *bbpState) Step() {
	s.m.Mul(s.m, s.jump)
	s.n += s.stride
}

func (s *bbpState) Accumulate(sum *big.Float) {
	k := 8 * int64(s.n)
	s.term.SetInt64(0)
	s.addQuo(4, k+1)
	s.addQuo(-2, k+4)
	s.addQuo(-1, k+5)
	s.addQuo(-1, k+6)
	s.term.Mul(s.term, s.m)
	sum.Add(sum, s.term)
}

// addQuo adds num/den to the running term.
func (s *bbpState) addQuo(num, den int64) {
	s.q.SetInt64(num)
	s.d.SetInt64(den)
	s.q.Quo(s.q, s.d)
	s.term.Add(s.term, s.q)
}

func (s *bbpState) Index() int { return s.n }

func (s *bbpState) Values() []*big.Float {
	return copyAll(s.ctx, s.m)
}
