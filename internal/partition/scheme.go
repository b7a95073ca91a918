// Package partition splits the iteration range [0, N) of a series among
// workers. Every scheme except the ratio-driven one guarantees that the union
// of all workers' ranges covers each index exactly once.
package partition

import (
	"fmt"
	"strings"
)

// Scheme identifies a work-distribution strategy.
type Scheme int

const (
	// Block gives each worker one contiguous range of ceil(N/T) indices.
	Block Scheme = iota
	// Cyclic gives worker t the indices t, t+T, t+2T, ...
	Cyclic
	// Snake splits [0, N) into 2T chunks; worker t owns chunks t and t+T.
	Snake
	// Cheater sizes contiguous blocks from a measured ratio table.
	Cheater
	// Sequential runs the whole range on a single worker.
	Sequential
)

var schemeNames = map[Scheme]string{
	Block:      "block",
	Cyclic:     "cyclic",
	Snake:      "snake",
	Cheater:    "cheater",
	Sequential: "sequential",
}

var schemeTags = map[Scheme]string{
	Block:      "BLC",
	Cyclic:     "CYC",
	Snake:      "SNK",
	Cheater:    "CHT",
	Sequential: "SEQ",
}

// String returns the lower-case scheme name.
func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// Tag returns the three-letter suffix used in algorithm tags.
func (s Scheme) Tag() string {
	return schemeTags[s]
}

// Names lists every scheme name in declaration order.
func Names() []string {
	return []string{"block", "cyclic", "snake", "cheater", "sequential"}
}

// ParseScheme accepts a scheme name or tag, case-insensitively.
func ParseScheme(name string) (Scheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range schemeNames {
		if name == n || name == strings.ToLower(schemeTags[s]) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown partition scheme %q (valid: %s)", name, strings.Join(Names(), ", "))
}

// Workers returns how many workers a run with the scheme actually starts.
func (s Scheme) Workers(threads int) int {
	if s == Sequential || threads < 1 {
		return 1
	}
	return threads
}
