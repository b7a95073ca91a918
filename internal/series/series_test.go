package series

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/picalc/internal/bigfloat"
)

const piDigits = "3.14159265358979323846264338327950288419716939937510" +
	"58209749445923078164062862089986280348253421170679" +
	"82148086513282306647093844609550582231725359408128"

var allKinds = []Kind{BBP, Bellard, BellardShift, Chudnovsky, ChudnovskyInt, ChudnovskyFactorials, CraigWood}

// matchingDecimals counts the decimals of got that agree with piDigits.
func matchingDecimals(got string) int {
	i := 0
	for i < len(got) && i < len(piDigits) && got[i] == piDigits[i] {
		i++
	}
	return max(i-2, 0)
}

// closeEnough reports whether x and y agree to within 2^(slack−prec)
// relative error.
func closeEnough(x, y *big.Float, prec uint, slack int) bool {
	if x.Sign() == 0 || y.Sign() == 0 {
		return x.Sign() == y.Sign()
	}
	diff := new(big.Float).SetPrec(prec).Sub(x, y)
	diff.Abs(diff)
	bound := new(big.Float).SetPrec(prec).Abs(y)
	bound.SetMantExp(bound, slack-int(prec))
	return diff.Cmp(bound) <= 0
}

// sumRange adds the terms [0, n) on a single state.
func sumRange(t *testing.T, fam Family, ctx bigfloat.Context, n int) *big.Float {
	t.Helper()
	st := fam.NewState()
	if err := st.Seed(0, 1); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	sum := ctx.New()
	for i := 0; i < n; i++ {
		st.Accumulate(sum)
		st.Step()
	}
	return fam.Finalize(sum)
}

func TestKindMetadata(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind       Kind
		name       string
		tag        string
		iterations int
	}{
		{BBP, "bbp", "BBP", 840},
		{Bellard, "bellard", "BEL-RCP", 333},
		{BellardShift, "bellard-shift", "BEL-BSP", 333},
		{Chudnovsky, "chudnovsky", "CHD-SME", 72},
		{ChudnovskyInt, "chudnovsky-int", "CHD-SME-INT", 72},
		{ChudnovskyFactorials, "chudnovsky-fact", "CHD-CAF", 72},
		{CraigWood, "craig-wood", "CHD-CWE", 72},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name || tt.kind.Tag() != tt.tag {
			t.Errorf("%d: got %s/%s, want %s/%s", tt.kind, tt.kind, tt.kind.Tag(), tt.name, tt.tag)
		}
		if got := tt.kind.Iterations(1000); got != tt.iterations {
			t.Errorf("%s.Iterations(1000) = %d, want %d", tt.name, got, tt.iterations)
		}
		parsed, err := ParseKind(tt.tag)
		if err != nil || parsed != tt.kind {
			t.Errorf("ParseKind(%q) = %v, %v", tt.tag, parsed, err)
		}
	}
	if Kind(99).String() != "Kind(99)" || Kind(99).Tag() != "" {
		t.Error("unexpected naming for an unknown kind")
	}
	if _, err := ParseKind("leibniz"); err == nil {
		t.Error("expected error for unknown series")
	}
	if _, err := New(Kind(99), bigfloat.ForDecimals(10, big.ToNearestEven), 1); err == nil {
		t.Error("expected error from New for unknown kind")
	}
}

func TestIterationsSmallPrecision(t *testing.T) {
	t.Parallel()
	if got := Chudnovsky.Iterations(1); got != 1 {
		t.Errorf("Chudnovsky.Iterations(1) = %d, want 1", got)
	}
	if got := BBP.Iterations(1); got != 0 {
		t.Errorf("BBP.Iterations(1) = %d, want 0", got)
	}
	if got := Bellard.Iterations(10); got != 3 {
		t.Errorf("Bellard.Iterations(10) = %d, want 3", got)
	}
}

func TestSeriesConvergeToPi(t *testing.T) {
	t.Parallel()
	const decimals = 100
	for _, k := range allKinds {
		for _, mode := range []big.RoundingMode{big.ToNearestEven, big.ToZero} {
			t.Run(k.String()+"/"+mode.String(), func(t *testing.T) {
				t.Parallel()
				ctx := bigfloat.ForDecimals(decimals, mode)
				iterations := k.Iterations(decimals)
				fam, err := New(k, ctx, iterations)
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				pi := sumRange(t, fam, ctx, iterations)
				if got := matchingDecimals(bigfloat.Format(pi, decimals)); got < decimals-3 {
					t.Errorf("%d correct decimals, want at least %d", got, decimals-3)
				}
			})
		}
	}
}

// accurateDecimals returns floor(−log10|x − π|), using piDigits as π.
func accurateDecimals(x *big.Float) int {
	ref, _, _ := big.ParseFloat(piDigits, 10, x.Prec(), big.ToNearestEven)
	diff := new(big.Float).SetPrec(x.Prec()).Sub(x, ref)
	if diff.Sign() == 0 {
		return len(piDigits) - 2
	}
	mant := new(big.Float)
	exp := diff.MantExp(mant)
	m, _ := mant.Abs(mant).Float64()
	return int(math.Floor(-(float64(exp) + math.Log2(m)) * math.Log10(2)))
}

func TestMonotonicConvergence(t *testing.T) {
	t.Parallel()
	ctx := bigfloat.ForDecimals(160, big.ToNearestEven)
	for _, k := range []Kind{BBP, Bellard, Chudnovsky, CraigWood} {
		fam, _ := New(k, ctx, 10)
		prev := -1
		for n := 1; n <= 10; n++ {
			got := accurateDecimals(sumRange(t, fam, ctx, n))
			if got < prev {
				t.Errorf("%s: %d terms give %d decimals, fewer than %d with %d terms", k, n, got, prev, n-1)
			}
			prev = got
		}
	}
}

func TestRecurrenceEquivalenceProperty(t *testing.T) {
	t.Parallel()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)
	ctx := bigfloat.ForDecimals(60, big.ToNearestEven)

	for _, k := range allKinds {
		fam, err := New(k, ctx, 80)
		if err != nil {
			t.Fatalf("New(%s): %v", k, err)
		}
		properties.Property(k.String()+": stepping from a seed equals seeding directly", prop.ForAll(
			func(start, steps, stride int) bool {
				if k.Sequential() {
					stride = 1
				}
				stepped := fam.NewState()
				if err := stepped.Seed(start, stride); err != nil {
					return false
				}
				for i := 0; i < steps; i++ {
					stepped.Step()
				}
				target := start + steps*stride
				direct := fam.NewState()
				if err := direct.Seed(target, stride); err != nil {
					return false
				}
				if stepped.Index() != target || direct.Index() != target {
					return false
				}
				got, want := stepped.Values(), direct.Values()
				if len(got) != len(want) {
					return false
				}
				for i := range got {
					if !closeEnough(got[i], want[i], ctx.Prec, 24) {
						return false
					}
				}
				return true
			},
			gen.IntRange(0, 30),
			gen.IntRange(0, 12),
			gen.IntRange(1, 4),
		))
	}

	properties.TestingRun(t)
}

func TestExactDependencies(t *testing.T) {
	t.Parallel()
	ctx := bigfloat.ForDecimals(40, big.ToZero)
	for _, k := range []Kind{BBP, Bellard, BellardShift, ChudnovskyInt} {
		fam, _ := New(k, ctx, 50)
		stepped := fam.NewState()
		_ = stepped.Seed(3, 5)
		for i := 0; i < 7; i++ {
			stepped.Step()
		}
		direct := fam.NewState()
		_ = direct.Seed(38, 5)
		got, want := stepped.Values(), direct.Values()
		for i := range got {
			if got[i].Cmp(want[i]) != 0 {
				t.Errorf("%s: dependency %d differs: %s vs %s", k, i, got[i].Text('g', 20), want[i].Text('g', 20))
			}
		}
	}
}

func TestBellardShiftStepReusesValues(t *testing.T) {
	// Not parallel: AllocsPerRun counts every allocation of the process.
	ctx := bigfloat.ForDecimals(2000, big.ToZero)
	fam, _ := New(BellardShift, ctx, 1000)
	st := fam.NewState()
	if err := st.Seed(1, 2); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if allocs := testing.AllocsPerRun(100, st.Step); allocs != 0 {
		t.Errorf("Step allocates %.1f times per call, want 0", allocs)
	}

	// AllocsPerRun stepped 101 times by 2 from index 1: m = −2^−2030.
	want := ctx.Pow2(-2030)
	want.Neg(want)
	if got := st.Values()[0]; st.Index() != 203 || got.Cmp(want) != 0 {
		t.Errorf("index %d: m = %s, want %s", st.Index(), got.Text('g', 10), want.Text('g', 10))
	}
}

func TestBellardSignAlternates(t *testing.T) {
	t.Parallel()
	ctx := bigfloat.ForDecimals(20, big.ToNearestEven)
	fam, _ := New(Bellard, ctx, 10)
	st := fam.NewState()
	_ = st.Seed(0, 3)
	for i := 0; i < 4; i++ {
		m := st.Values()[0]
		wantNeg := st.Index()%2 != 0
		if (m.Sign() < 0) != wantNeg {
			t.Errorf("index %d: m = %s has the wrong sign", st.Index(), m.Text('g', 5))
		}
		st.Step()
	}
}

func TestCraigWoodRejectsStride(t *testing.T) {
	t.Parallel()
	ctx := bigfloat.ForDecimals(20, big.ToNearestEven)
	fam, _ := New(CraigWood, ctx, 10)
	if err := fam.NewState().Seed(0, 2); !errors.Is(err, ErrStrideUnsupported) {
		t.Errorf("Seed with stride 2 = %v, want ErrStrideUnsupported", err)
	}
	if !CraigWood.Sequential() || Chudnovsky.Sequential() {
		t.Error("only Craig Wood is sequential")
	}
}

func TestFactorialFamilyOutsideTable(t *testing.T) {
	t.Parallel()
	ctx := bigfloat.ForDecimals(30, big.ToNearestEven)
	small, _ := New(ChudnovskyFactorials, ctx, 2)
	full, _ := New(Chudnovsky, ctx, 10)

	a := small.NewState()
	_ = a.Seed(7, 1)
	b := full.NewState()
	_ = b.Seed(7, 1)

	sa, sb := ctx.New(), ctx.New()
	a.Accumulate(sa)
	b.Accumulate(sb)
	if !closeEnough(sa, sb, ctx.Prec, 8) {
		t.Errorf("term 7 differs: %s vs %s", sa.Text('g', 30), sb.Text('g', 30))
	}
}
