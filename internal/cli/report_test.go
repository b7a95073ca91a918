package cli

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/series"
	"github.com/agbru/picalc/internal/testutil"
)

func sampleResult(precision int) *pi.Result {
	x, _, _ := big.ParseFloat("3.14159265358979323846264338327950288419716939937510582097494459230781640628620899862803482534211706798214808651328230664709384460955058223172535940812848111745028410270193852110555964462294895493038196",
		10, 2000, big.ToNearestEven)
	return &pi.Result{
		Pi:         x,
		Algorithm:  pi.Algorithm{Library: pi.GMP, ID: 5, Series: series.Chudnovsky, Scheme: partition.Block},
		Precision:  precision,
		Iterations: 72,
		Threads:    4,
		Workers:    4,
		Bits:       8000,
		Duration:   1500 * time.Millisecond,
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()
	s := NewSummary(sampleResult(1000), 1001)

	var buf bytes.Buffer
	WriteReport(&buf, s, false)
	want := strings.Join([]string{
		"  Library used: GMP",
		"  Algorithm: GMP-CHD-SME-BLC",
		"  Precision used: 1000",
		"  Number of iterations: 72",
		"  Number of threads: 4",
		"  Correct decimals: 1001",
		"  Execution time: 1.500000 seconds",
		"",
		"",
	}, "\n")
	if diff := cmp.Diff(want, testutil.StripAnsiCodes(buf.String())); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportShortfall(t *testing.T) {
	t.Parallel()
	s := NewSummary(sampleResult(1000), 640)

	var buf bytes.Buffer
	WriteReport(&buf, s, true)
	got := testutil.StripAnsiCodes(buf.String())
	for _, want := range []string{
		"Something went wrong. The execution just achieved 640 decimals",
		"Working precision: 8000 bits",
		"Workers started: 4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report misses %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Correct decimals") {
		t.Error("a shortfall must not print the correct decimals line")
	}
}

func TestFormatCSV(t *testing.T) {
	t.Parallel()
	got := FormatCSV(NewSummary(sampleResult(1000), 1001))
	if want := "GO;GMP;GMP-CHD-SME-BLC;1000;72;4;1001;1.500000;"; got != want {
		t.Errorf("FormatCSV = %q, want %q", got, want)
	}
	var buf bytes.Buffer
	WriteCSV(&buf, NewSummary(sampleResult(10), 12))
	if !strings.HasSuffix(buf.String(), ";12;1.500000;\n") {
		t.Errorf("WriteCSV = %q", buf.String())
	}
}

func TestDisplayDigits(t *testing.T) {
	t.Parallel()
	var short bytes.Buffer
	DisplayDigits(&short, sampleResult(20), false)
	if got := testutil.StripAnsiCodes(short.String()); !strings.Contains(got, "π = 3.14159265358979323846\n") {
		t.Errorf("short output = %q", got)
	}

	var long bytes.Buffer
	DisplayDigits(&long, sampleResult(150), false)
	got := testutil.StripAnsiCodes(long.String())
	if !strings.Contains(got, "π (truncated) = 3.1415926535897932384626433...") || !strings.Contains(got, "Tip:") {
		t.Errorf("long output = %q", got)
	}

	var verbose bytes.Buffer
	DisplayDigits(&verbose, sampleResult(150), true)
	if strings.Contains(verbose.String(), "truncated") {
		t.Error("verbose output should not be truncated")
	}

	var quiet bytes.Buffer
	DisplayQuietResult(&quiet, sampleResult(5))
	if quiet.String() != "3.14159\n" {
		t.Errorf("quiet output = %q", quiet.String())
	}
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "pi.txt")
	if err := WriteResultToFile(sampleResult(20), 21, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{"# Algorithm: GMP-CHD-SME-BLC", "# Correct decimals: 21", "3.14159265358979323846\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("file misses %q:\n%s", want, content)
		}
	}
	if err := WriteResultToFile(sampleResult(30), 31, ""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}

func TestPrintExecution(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintTitle(&buf)
	PrintExecutionConfig(&buf, 1000, 4, time.Minute)
	PrintExecutionMode(&buf, pi.NewDefaultFactory().ForLibrary(pi.MPFR))
	got := testutil.StripAnsiCodes(buf.String())
	for _, want := range []string{"Computing 1000 decimals of π with 4 threads", "comparison of 5 algorithms", "MPFR-BBP-BLC"} {
		if !strings.Contains(got, want) {
			t.Errorf("output misses %q", want)
		}
	}
}
