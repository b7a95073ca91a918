// Package pi selects and runs the π algorithms. An algorithm pairs a series
// family with a partition scheme; the catalog numbers them per library the
// way the command line has always addressed them (e.g. GMP 5 is the
// simplified Chudnovsky expression split in blocks).
package pi

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/series"
)

// Library names the arithmetic flavour of a run. GMP floats truncate, MPFR
// floats round to nearest; both are provided by math/big.
type Library string

const (
	GMP  Library = "GMP"
	MPFR Library = "MPFR"
)

// Libraries lists the supported libraries.
func Libraries() []Library {
	return []Library{GMP, MPFR}
}

// ParseLibrary resolves a library name case-insensitively.
func ParseLibrary(name string) (Library, error) {
	lib := Library(strings.ToUpper(strings.TrimSpace(name)))
	if slices.Contains(Libraries(), lib) {
		return lib, nil
	}
	valid := make([]string, 0, 2)
	for _, l := range Libraries() {
		valid = append(valid, string(l))
	}
	return "", apperrors.UnsupportedSelectionError{Library: name, Valid: valid}
}

// RoundingMode returns the rounding mode emulating the library.
func (l Library) RoundingMode() big.RoundingMode {
	if l == GMP {
		return big.ToZero
	}
	return big.ToNearestEven
}

// CustomID is the ID of algorithms built from an explicit series and scheme.
const CustomID = -1

// Algorithm is a series family summed with a partition scheme.
type Algorithm struct {
	Library Library
	ID      int
	Series  series.Kind
	Scheme  partition.Scheme
}

// Tag returns the short identifier printed in reports, such as
// "GMP-CHD-SME-SNK".
func (a Algorithm) Tag() string {
	return fmt.Sprintf("%s-%s-%s", a.Library, a.Series.Tag(), a.Scheme.Tag())
}

// String describes the algorithm for humans.
func (a Algorithm) String() string {
	return fmt.Sprintf("%s (%s series, %s distribution)", a.Tag(), a.Series, a.Scheme)
}

var catalog = map[Library][]Algorithm{
	GMP: {
		{GMP, 0, series.BBP, partition.Cyclic},
		{GMP, 1, series.BBP, partition.Block},
		{GMP, 2, series.BellardShift, partition.Cyclic},
		{GMP, 3, series.Bellard, partition.Cyclic},
		{GMP, 4, series.ChudnovskyFactorials, partition.Block},
		{GMP, 5, series.Chudnovsky, partition.Block},
		{GMP, 6, series.Chudnovsky, partition.Snake},
		{GMP, 7, series.ChudnovskyInt, partition.Block},
		{GMP, 8, series.CraigWood, partition.Sequential},
		{GMP, 9, series.Chudnovsky, partition.Cheater},
	},
	MPFR: {
		{MPFR, 0, series.BBP, partition.Block},
		{MPFR, 1, series.Bellard, partition.Cyclic},
		{MPFR, 2, series.Chudnovsky, partition.Block},
		{MPFR, 3, series.BellardShift, partition.Cyclic},
		{MPFR, 4, series.CraigWood, partition.Sequential},
	},
}

// Algorithms returns the catalog of a library ordered by ID.
func Algorithms(lib Library) []Algorithm {
	return slices.Clone(catalog[lib])
}

// All returns every catalogued algorithm, GMP first.
func All() []Algorithm {
	var all []Algorithm
	for _, lib := range Libraries() {
		all = append(all, catalog[lib]...)
	}
	return all
}

// Lookup returns algorithm id of lib.
//
// Parameters:
//   - lib: The library whose catalog is searched.
//   - id: The catalog number, as typed on the command line.
//
// Returns:
//   - Algorithm: The catalogued algorithm.
//   - error: An error if id is outside the catalog of lib.
func Lookup(lib Library, id int) (Algorithm, error) {
	algos, ok := catalog[lib]
	if !ok {
		_, err := ParseLibrary(string(lib))
		return Algorithm{}, err
	}
	if id < 0 || id >= len(algos) {
		valid := make([]string, len(algos))
		for i, a := range algos {
			valid[i] = fmt.Sprintf("%d (%s)", a.ID, a.Tag())
		}
		return Algorithm{}, apperrors.UnsupportedSelectionError{
			Library:   string(lib),
			Algorithm: strconv.Itoa(id),
			Valid:     valid,
		}
	}
	return algos[id], nil
}

// LookupTag finds a catalogued algorithm by its tag.
func LookupTag(tag string) (Algorithm, bool) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	for _, a := range All() {
		if a.Tag() == tag {
			return a, true
		}
	}
	return Algorithm{}, false
}

// Custom builds an algorithm outside the catalog. Sequential series always
// use the sequential scheme.
func Custom(lib Library, kind series.Kind, scheme partition.Scheme) Algorithm {
	if kind.Sequential() {
		scheme = partition.Sequential
	}
	return Algorithm{Library: lib, ID: CustomID, Series: kind, Scheme: scheme}
}
