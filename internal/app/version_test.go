package app

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHasVersionFlag(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"empty", []string{}, false},
		{"no version flag", []string{"-precision", "100"}, false},
		{"long flag", []string{"--version"}, true},
		{"short flag", []string{"-V"}, true},
		{"single dash", []string{"-version"}, true},
		{"in the middle", []string{"-precision", "100", "--version", "-algo", "all"}, true},
		{"positional form", []string{"GMP", "5", "1000", "4", "-V"}, true},
		{"similar flag", []string{"--verbose"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasVersionFlag(tc.args); got != tc.want {
				t.Errorf("HasVersionFlag(%v) = %v, want %v", tc.args, got, tc.want)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintVersion(&buf)

	out := buf.String()
	for _, want := range []string{"picalc " + Version, "Commit:", "Built:", "Go version: " + runtime.Version(), "OS/Arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintVersion output lacks %q:\n%s", want, out)
		}
	}
}

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()
	want := VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if diff := cmp.Diff(want, GetVersionInfo()); diff != "" {
		t.Errorf("GetVersionInfo mismatch (-want +got):\n%s", diff)
	}
}
