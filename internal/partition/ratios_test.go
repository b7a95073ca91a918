package partition

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/agbru/picalc/internal/errors"
)

func TestRatioTableRoundTrip(t *testing.T) {
	t.Parallel()
	table := uniformTable()
	var buf bytes.Buffer
	if _, err := table.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != MaxRatioThreads {
		t.Fatalf("wrote %d lines, want %d", lines, MaxRatioThreads)
	}
	parsed, err := ParseRatioTable(&buf)
	if err != nil {
		t.Fatalf("ParseRatioTable: %v", err)
	}
	for _, threads := range []int{2, 4, 8, 64, 160} {
		if sum := parsed.Sum(threads); sum < 99.99 || sum > 100.01 {
			t.Errorf("Sum(%d) = %f, want 100", threads, sum)
		}
	}
}

func TestParseRatioTableErrors(t *testing.T) {
	t.Parallel()
	row := strings.TrimSpace(strings.Repeat("1.0 ", RatioColumns))
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "\n\n", "empty ratio table"},
		{"short row", "1.0 2.0\n", "line 1: expected 41 ratios, found 2"},
		{"not a number", strings.Replace(row, "1.0", "abc", 1) + "\n", "line 1, column 1"},
		{"out of range", strings.Replace(row, "1.0", "120", 1) + "\n", "outside [0, 100]"},
		{"too many rows", strings.Repeat(row+"\n", MaxRatioThreads+1), "more than 160 rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRatioTable(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRatioOutOfTable(t *testing.T) {
	t.Parallel()
	table, err := ParseRatioTable(strings.NewReader(strings.Repeat("5 ", RatioColumns) + "\n"))
	if err != nil {
		t.Fatalf("ParseRatioTable: %v", err)
	}
	if _, err := table.Ratio(4, 1); err == nil {
		t.Error("expected error for a missing row")
	}
	if _, err := Plan(Cheater, 100, 4, 3, table); err == nil {
		t.Error("expected Plan to report the missing row")
	}
}

func TestLoadRatioTable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := LoadRatioTable(filepath.Join(dir, "missing.txt"))
	var resErr apperrors.ResourceError
	if !errors.As(err, &resErr) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want ResourceError wrapping ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte("1 2 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRatioTable(bad); !errors.As(err, &resErr) || resErr.Path != bad {
		t.Errorf("malformed file error = %v, want ResourceError for %s", err, bad)
	}

	good := filepath.Join(dir, "good.txt")
	var buf bytes.Buffer
	if _, err := uniformTable().WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(good, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	table, err := LoadRatioTable(good)
	if err != nil {
		t.Fatalf("LoadRatioTable: %v", err)
	}
	if r, _ := table.Ratio(8, 7); r != 12.5 {
		t.Errorf("Ratio(8, 7) = %v, want 12.5", r)
	}
}
