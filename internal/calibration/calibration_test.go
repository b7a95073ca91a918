package calibration

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/testutil"
)

func smallBench() *MicroBenchmark {
	return &MicroBenchmark{Precision: 2000, Segments: 4, Repeats: 1, Samplers: 2}
}

func TestMicroBenchmarkRun(t *testing.T) {
	t.Parallel()

	var calls int
	bench := smallBench()
	bench.Samplers = 1
	bench.Progress = func(float64) { calls++ }

	p, err := bench.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Iterations != 143 || len(p.Segments) != 4 {
		t.Fatalf("profile covers %d iterations in %d segments", p.Iterations, len(p.Segments))
	}
	if p.Segments[0].Start != 0 || p.Segments[3].End != 143 {
		t.Errorf("segments do not span the range: %+v", p.Segments)
	}
	for _, s := range p.Segments {
		if s.Terms <= 0 {
			t.Errorf("segment %+v has no measured cost", s)
		}
	}
	if calls != 4 {
		t.Errorf("progress called %d times, want 4", calls)
	}
}

func TestMicroBenchmarkErrors(t *testing.T) {
	t.Parallel()

	if _, err := (&MicroBenchmark{}).Run(context.Background()); err == nil {
		t.Error("expected an error for a zero precision")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := smallBench().Run(ctx); !apperrors.IsContextError(err) {
		t.Errorf("canceled run error = %v", err)
	}
}

func TestRunCalibrationWritesTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "ratios", "working_ratios.txt")
	profilePath := filepath.Join(dir, "profile.yaml")

	var out bytes.Buffer
	code := RunCalibrationWithOptions(context.Background(), &out, CalibrationOptions{
		OutputPath:  output,
		MaxThreads:  8,
		ProfilePath: profilePath,
		SaveProfile: true,
		Quiet:       true,
		Bench:       smallBench(),
	})
	if code != apperrors.ExitSuccess {
		t.Fatalf("exit code %d, output:\n%s", code, out.String())
	}

	table, err := partition.LoadRatioTable(output)
	if err != nil {
		t.Fatalf("LoadRatioTable: %v", err)
	}
	for _, threads := range ThreadCounts(8) {
		if sum := table.Sum(threads); math.Abs(sum-100) > 1e-3 {
			t.Errorf("%d threads: shares sum to %v", threads, sum)
		}
	}

	text := testutil.StripAnsiCodes(out.String())
	for _, want := range []string{"Calibration Summary", "Sampled Term Cost", "written to " + output} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}

	// A second run reuses the saved samples.
	out.Reset()
	code = RunCalibrationWithOptions(context.Background(), &out, CalibrationOptions{
		OutputPath:  output,
		MaxThreads:  8,
		ProfilePath: profilePath,
		LoadProfile: true,
		Quiet:       true,
	})
	if code != apperrors.ExitSuccess {
		t.Fatalf("second run exit code %d", code)
	}
	text = testutil.StripAnsiCodes(out.String())
	if !strings.Contains(text, "Loaded existing calibration profile") || strings.Contains(text, "Sampled Term Cost") {
		t.Errorf("second run should reuse the profile:\n%s", text)
	}
}

func TestRunCalibrationFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("too many threads for the sampled precision", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		code := RunCalibrationWithOptions(context.Background(), &out, CalibrationOptions{
			OutputPath: filepath.Join(dir, "a.txt"),
			MaxThreads: 160,
			Quiet:      true,
			Bench:      smallBench(),
		})
		if code != apperrors.ExitErrorGeneric {
			t.Errorf("exit code %d, want %d", code, apperrors.ExitErrorGeneric)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer
		code := RunCalibrationWithOptions(ctx, &out, CalibrationOptions{
			OutputPath: filepath.Join(dir, "b.txt"),
			MaxThreads: 8,
			Quiet:      true,
			Bench:      smallBench(),
		})
		if code != apperrors.ExitErrorCanceled {
			t.Errorf("exit code %d, want %d", code, apperrors.ExitErrorCanceled)
		}
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		code := RunCalibrationWithOptions(context.Background(), &out, CalibrationOptions{
			OutputPath: dir,
			MaxThreads: 8,
			Quiet:      true,
			Bench:      smallBench(),
		})
		if code != apperrors.ExitErrorResource {
			t.Errorf("exit code %d, want %d", code, apperrors.ExitErrorResource)
		}
	})
}
