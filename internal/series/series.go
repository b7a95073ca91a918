// Package series implements the π series summed by the calculator. Each
// family carries its per-term recurrence state ("dependencies"): a State is
// seeded once at the first index of a range with exact integer arithmetic and
// then advanced by cheap incremental updates, never by recomputing factorials
// or powers from their definition.
package series

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/agbru/picalc/internal/bigfloat"
)

// ErrStrideUnsupported is returned when a sequential family is seeded with a
// stride other than one.
var ErrStrideUnsupported = errors.New("series: family only supports unit stride")

// Family is one π series bound to a run's precision.
type Family interface {
	// Kind identifies the series.
	Kind() Kind
	// NewState allocates the recurrence state and its temporaries.
	NewState() State
	// Finalize turns the accumulated sum into π.
	Finalize(sum *big.Float) *big.Float
}

// State is the per-worker recurrence state of a family. A State is owned by
// a single goroutine.
type State interface {
	// Seed sets the state to index n; subsequent Steps advance by stride.
	Seed(n, stride int) error
	// Step advances the state from n to n+stride.
	Step()
	// Accumulate adds the term of the current index to sum.
	Accumulate(sum *big.Float)
	// Index returns the current index.
	Index() int
	// Values returns copies of the dependency values at the current index.
	Values() []*big.Float
}

// Kind enumerates the available series.
type Kind int

const (
	// BBP is the Bailey–Borwein–Plouffe series.
	BBP Kind = iota
	// Bellard is Bellard's series with a recursive power dependency.
	Bellard
	// BellardShift is Bellard's series rebuilding the power with a bit shift.
	BellardShift
	// Chudnovsky is the Chudnovsky series with the simplified expression.
	Chudnovsky
	// ChudnovskyInt keeps the simplified dependencies as exact integers.
	ChudnovskyInt
	// ChudnovskyFactorials reads every factorial from a precomputed table.
	ChudnovskyFactorials
	// CraigWood is the strictly sequential Chudnovsky recurrence.
	CraigWood
)

type kindInfo struct {
	name string
	tag  string
}

var kinds = []kindInfo{
	BBP:                  {"bbp", "BBP"},
	Bellard:              {"bellard", "BEL-RCP"},
	BellardShift:         {"bellard-shift", "BEL-BSP"},
	Chudnovsky:           {"chudnovsky", "CHD-SME"},
	ChudnovskyInt:        {"chudnovsky-int", "CHD-SME-INT"},
	ChudnovskyFactorials: {"chudnovsky-fact", "CHD-CAF"},
	CraigWood:            {"craig-wood", "CHD-CWE"},
}

// String returns the family name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kinds) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// Tag returns the abbreviation used in algorithm tags.
func (k Kind) Tag() string {
	if k < 0 || int(k) >= len(kinds) {
		return ""
	}
	return kinds[k].tag
}

// Sequential reports whether the family cannot be split by index.
func (k Kind) Sequential() bool {
	return k == CraigWood
}

// Iterations returns how many terms are needed for the given number of
// decimals. The rates are empirical and kept for compatibility.
func (k Kind) Iterations(decimals int) int {
	switch k {
	case BBP:
		return int(float64(decimals) * 0.84)
	case Bellard, BellardShift:
		return decimals / 3
	default:
		return (decimals + digitsPerChudnovskyTerm - 1) / digitsPerChudnovskyTerm
	}
}

// Kinds lists every family name.
func Kinds() []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.name
	}
	return names
}

// ParseKind looks a family up by name or tag.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, k := range kinds {
		if name == k.name || name == strings.ToLower(k.tag) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown series %q (valid: %s)", name, strings.Join(Kinds(), ", "))
}

// New binds the family of kind k to a precision. iterations is the total
// number of terms of the run; only the factorial table family uses it.
func New(k Kind, ctx bigfloat.Context, iterations int) (Family, error) {
	switch k {
	case BBP:
		return &bbpFamily{ctx: ctx}, nil
	case Bellard:
		return &bellardFamily{ctx: ctx}, nil
	case BellardShift:
		return &bellardFamily{ctx: ctx, shift: true}, nil
	case Chudnovsky:
		return newChudnovskyFamily(ctx), nil
	case ChudnovskyInt:
		return &chudnovskyIntFamily{chudnovskyFamily: newChudnovskyFamily(ctx)}, nil
	case ChudnovskyFactorials:
		return newChudnovskyFactFamily(ctx, iterations), nil
	case CraigWood:
		return &craigWoodFamily{chudnovskyFamily: newChudnovskyFamily(ctx)}, nil
	default:
		return nil, fmt.Errorf("series: unknown kind %d", int(k))
	}
}

func copyAll(ctx bigfloat.Context, values ...*big.Float) []*big.Float {
	out := make([]*big.Float, len(values))
	for i, v := range values {
		out[i] = ctx.New().Set(v)
	}
	return out
}
