// Package verify counts how many decimals of a computed π agree with a
// reference expansion read from disk.
package verify

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"os"

	"github.com/agbru/picalc/internal/bigfloat"
	apperrors "github.com/agbru/picalc/internal/errors"
)

// DefaultReferencePath is the reference file shipped with the repository.
const DefaultReferencePath = "resources/pi_reference.txt"

var errMalformed = errors.New("reference digits must start with \"3.\" followed by decimals")

// Reference holds π written as "3." followed by decimals.
type Reference struct {
	digits string
}

// ParseReference reads a reference expansion. Surrounding whitespace is
// ignored.
func ParseReference(r io.Reader) (*Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) < 3 || !bytes.HasPrefix(data, []byte("3.")) {
		return nil, errMalformed
	}
	for _, c := range data[2:] {
		if c < '0' || c > '9' {
			return nil, errMalformed
		}
	}
	return &Reference{digits: string(data)}, nil
}

// LoadReference reads the reference file at path. A missing or malformed
// file is reported as a ResourceError.
func LoadReference(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewResourceError(path, err)
	}
	defer f.Close()
	ref, err := ParseReference(f)
	if err != nil {
		return nil, apperrors.NewResourceError(path, err)
	}
	return ref, nil
}

// Decimals returns how many decimals the reference holds.
func (r *Reference) Decimals() int {
	return len(r.digits) - 2
}

// String returns the reference expansion.
func (r *Reference) String() string {
	return r.digits
}

// Count returns the number of leading decimals of computed that match the
// reference.
func (r *Reference) Count(computed string) int {
	return CountCorrectDecimals(computed, r.digits)
}

// Check formats x with every decimal its precision can hold and counts the
// correct ones. Formatting stops one digit past the reference.
func (r *Reference) Check(x *big.Float) int {
	decimals := bigfloat.Context{Prec: x.Prec()}.Decimals()
	decimals = min(decimals, r.Decimals()+1)
	return r.Count(bigfloat.Format(x, decimals))
}

// CountCorrectDecimals compares computed and reference character by
// character and returns the matching length minus the "3." prefix.
func CountCorrectDecimals(computed, reference string) int {
	i := 0
	for i < len(computed) && i < len(reference) && computed[i] == reference[i] {
		i++
	}
	if i < 2 {
		return 0
	}
	return i - 2
}
