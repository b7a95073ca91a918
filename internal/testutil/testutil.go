// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
)

// ansiRegex matches CSI escape sequences (ESC [ ... letter).
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes terminal colour codes from s.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// RepoRoot returns the repository root, located from this source file.
func RepoRoot(tb testing.TB) string {
	tb.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		tb.Fatal("testutil: cannot locate source file")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

// ResourcePath returns the absolute path of a file under resources/.
func ResourcePath(tb testing.TB, name string) string {
	tb.Helper()
	return filepath.Join(RepoRoot(tb), "resources", name)
}

// ReferencePi returns the reference expansion of π shipped in resources/.
func ReferencePi(tb testing.TB) string {
	tb.Helper()
	data, err := os.ReadFile(ResourcePath(tb, "pi_reference.txt"))
	if err != nil {
		tb.Fatalf("testutil: reading reference digits: %v", err)
	}
	return strings.TrimSpace(string(data))
}
