package calibration

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/picalc/internal/bigfloat"
	"github.com/agbru/picalc/internal/series"
)

const (
	// DefaultPrecision is the number of decimals sampled. It yields 1429
	// Chudnovsky terms, enough for every thread count of the ratio table.
	DefaultPrecision = 20_000
	// DefaultSegments is the number of slices of the iteration range timed.
	DefaultSegments = 32
	// DefaultRepeats is the number of timings per segment; the fastest wins.
	DefaultRepeats = 3

	maxDuration = time.Duration(1<<63 - 1)
)

// SegmentCost is the measured cost of summing terms [Start, End).
type SegmentCost struct {
	Start int
	End   int
	// Seed is the time to seed a state at Start.
	Seed time.Duration
	// Terms is the time to sum the segment once seeded.
	Terms time.Duration
}

// PerTerm returns the average cost of one term in nanoseconds.
func (s SegmentCost) PerTerm() float64 {
	if s.End <= s.Start {
		return 0
	}
	return float64(s.Terms.Nanoseconds()) / float64(s.End-s.Start)
}

// CostProfile is the sampled cost of the Chudnovsky recurrence along its
// iteration range.
type CostProfile struct {
	Precision  int
	Iterations int
	Segments   []SegmentCost
	Duration   time.Duration
}

// MicroBenchmark samples the per-term cost of the Chudnovsky series.
type MicroBenchmark struct {
	// Precision is the number of decimals of the sampled run.
	Precision int
	// Segments is the number of slices timed.
	Segments int
	// Repeats is the number of timings per slice.
	Repeats int
	// Samplers bounds concurrent slices. Values above 1 trade accuracy for
	// speed since samplers compete for the same cores.
	Samplers int
	// Progress, when set, receives the completed fraction.
	Progress func(done float64)
}

// NewMicroBenchmark returns a benchmark with the default settings.
func NewMicroBenchmark() *MicroBenchmark {
	return &MicroBenchmark{
		Precision: DefaultPrecision,
		Segments:  DefaultSegments,
		Repeats:   DefaultRepeats,
		Samplers:  1,
	}
}

// Run times every segment of the iteration range.
func (mb *MicroBenchmark) Run(ctx context.Context) (CostProfile, error) {
	start := time.Now()
	if mb.Precision < 1 {
		return CostProfile{}, errors.New("calibration: precision must be positive")
	}

	iterations := series.Chudnovsky.Iterations(mb.Precision)
	numeric := bigfloat.ForDecimals(mb.Precision, big.ToZero)
	family, err := series.New(series.Chudnovsky, numeric, iterations)
	if err != nil {
		return CostProfile{}, err
	}

	segments := splitSegments(iterations, mb.Segments)
	runner := newCalibrationRunner(family, numeric, mb.Repeats)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(mb.Samplers, 1))
	for i := range segments {
		g.Go(func() error {
			cost, err := runner.runSegment(gctx, segments[i])
			if err != nil {
				return fmt.Errorf("segment [%d, %d): %w", segments[i].Start, segments[i].End, err)
			}
			segments[i] = cost
			if mb.Progress != nil {
				mb.Progress(float64(done.Add(1)) / float64(len(segments)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CostProfile{}, err
	}

	return CostProfile{
		Precision:  mb.Precision,
		Iterations: iterations,
		Segments:   segments,
		Duration:   time.Since(start),
	}, nil
}

// splitSegments cuts [0, iterations) into at most n contiguous slices.
func splitSegments(iterations, n int) []SegmentCost {
	n = min(max(n, 1), max(iterations, 1))
	segments := make([]SegmentCost, 0, n)
	for i := range n {
		start := i * iterations / n
		end := (i + 1) * iterations / n
		if end > start {
			segments = append(segments, SegmentCost{Start: start, End: end})
		}
	}
	return segments
}
