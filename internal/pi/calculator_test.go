package pi

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/picalc/internal/bigfloat"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/series"
	"github.com/agbru/picalc/internal/testutil"
	"github.com/agbru/picalc/internal/verify"
)

func correctDecimals(t *testing.T, r *Result) int {
	t.Helper()
	ref, err := verify.ParseReference(strings.NewReader(testutil.ReferencePi(t)))
	if err != nil {
		t.Fatal(err)
	}
	return ref.Check(r.Pi)
}

func ratiosOption(t *testing.T) Options {
	t.Helper()
	return Options{RatiosPath: testutil.ResourcePath(t, "working_ratios.txt")}
}

func TestKnownValueBBP(t *testing.T) {
	t.Parallel()
	for _, lib := range Libraries() {
		calc := NewAlgorithmCalculator(Custom(lib, series.BBP, partition.Block))
		res, err := calc.Calculate(context.Background(), nil, 0, 100, Options{Threads: 1})
		if err != nil {
			t.Fatalf("%s: %v", lib, err)
		}
		if got := correctDecimals(t, res); got < 80 {
			t.Errorf("%s BBP: %d correct decimals, want at least 80", lib, got)
		}
	}
}

func TestKnownValueChudnovsky(t *testing.T) {
	t.Parallel()
	calc, err := GlobalFactory().Resolve(GMP, 5)
	if err != nil {
		t.Fatal(err)
	}
	res, err := calc.Calculate(context.Background(), nil, 0, 1000, Options{Threads: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := correctDecimals(t, res); got < 900 {
		t.Errorf("Chudnovsky: %d correct decimals, want at least 900", got)
	}
	if res.Iterations != 72 || res.Workers != 4 || res.Bits != 8000 {
		t.Errorf("unexpected result metadata: %+v", res)
	}
}

func TestEveryAlgorithmReachesPrecision(t *testing.T) {
	t.Parallel()
	const precision = 300
	for _, alg := range All() {
		t.Run(alg.Tag(), func(t *testing.T) {
			t.Parallel()
			calc := NewAlgorithmCalculator(alg)
			for _, threads := range []int{1, 2, 4} {
				opts := ratiosOption(t)
				opts.Threads = threads
				res, err := calc.Calculate(context.Background(), nil, 0, precision, opts)
				if err != nil {
					t.Fatalf("%d threads: %v", threads, err)
				}
				if got := correctDecimals(t, res); got < precision-2 {
					t.Errorf("%d threads: %d correct decimals, want at least %d", threads, got, precision-2)
				}
			}
		})
	}
}

func TestCalculateReportsProgress(t *testing.T) {
	t.Parallel()
	calc := NewAlgorithmCalculator(Custom(MPFR, series.Bellard, partition.Cyclic))
	ch := make(chan ProgressUpdate, 256)
	if _, err := calc.Calculate(context.Background(), ch, 3, 600, Options{Threads: 2}); err != nil {
		t.Fatal(err)
	}
	close(ch)
	var last ProgressUpdate
	count := 0
	for u := range ch {
		if u.CalculatorIndex != 3 {
			t.Errorf("update for calculator %d, want 3", u.CalculatorIndex)
		}
		last = u
		count++
	}
	if count == 0 || last.Value != 1.0 {
		t.Errorf("got %d updates ending at %v, want completion", count, last.Value)
	}
}

func TestCalculateValidationErrors(t *testing.T) {
	t.Parallel()
	calc, _ := GlobalFactory().Resolve(MPFR, 0)
	_, err := calc.Calculate(context.Background(), nil, 0, 0, Options{Threads: 1})
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("precision 0: error = %v, want ConfigError", err)
	}

	_, err = calc.Calculate(context.Background(), nil, 0, 10, Options{Threads: 16})
	if !errors.As(err, &cfgErr) {
		t.Errorf("16 threads: error = %v, want ConfigError", err)
	}
}

func TestCalculateMissingRatios(t *testing.T) {
	t.Parallel()
	calc, _ := GlobalFactory().Resolve(GMP, 9)
	missing := filepath.Join(t.TempDir(), "working_ratios.txt")
	_, err := calc.Calculate(context.Background(), nil, 0, 200, Options{Threads: 4, RatiosPath: missing})
	var resErr apperrors.ResourceError
	if !errors.As(err, &resErr) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want ResourceError", err)
	}
}

func TestCalculateCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	calc, _ := GlobalFactory().Resolve(GMP, 0)
	_, err := calc.Calculate(ctx, nil, 0, 2000, Options{Threads: 2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	var calcErr apperrors.CalculationError
	if errors.As(err, &calcErr) {
		t.Error("context errors must not be wrapped as CalculationError")
	}
}

func TestCalculationErrorWrapping(t *testing.T) {
	t.Parallel()
	// A cyclic Craig Wood bypasses Custom and fails inside the workers.
	alg := Algorithm{Library: GMP, ID: CustomID, Series: series.CraigWood, Scheme: partition.Cyclic}
	_, err := NewAlgorithmCalculator(alg).Calculate(context.Background(), nil, 0, 100, Options{Threads: 2})
	var calcErr apperrors.CalculationError
	if !errors.As(err, &calcErr) || !errors.Is(err, series.ErrStrideUnsupported) {
		t.Errorf("error = %v, want CalculationError wrapping ErrStrideUnsupported", err)
	}
}

func TestThreadCountInvariance(t *testing.T) {
	t.Parallel()
	alg, _ := Lookup(MPFR, 1)
	calc := NewAlgorithmCalculator(alg)
	var first *Result
	for _, threads := range []int{1, 2, 4, 8} {
		res, err := calc.Calculate(context.Background(), nil, 0, 240, Options{Threads: threads})
		if err != nil {
			t.Fatal(err)
		}
		if first == nil {
			first = res
			continue
		}
		a := bigfloat.Format(first.Pi, 238)
		b := bigfloat.Format(res.Pi, 238)
		if verify.CountCorrectDecimals(a, b) < 236 {
			t.Errorf("%d threads diverge from 1 thread:\n%s\n%s", threads, a, b)
		}
	}
}

func TestNewCalculatorPanicsOnNil(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	NewCalculator(nil)
}
