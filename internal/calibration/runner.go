package calibration

import (
	"context"
	"time"

	"github.com/agbru/picalc/internal/bigfloat"
	"github.com/agbru/picalc/internal/series"
)

// cancelCheckInterval is how many terms a segment sums between context checks.
const cancelCheckInterval = 64

// calibrationRunner times segments of one series family.
type calibrationRunner struct {
	family  series.Family
	numeric bigfloat.Context
	repeats int
}

func newCalibrationRunner(family series.Family, numeric bigfloat.Context, repeats int) *calibrationRunner {
	return &calibrationRunner{family: family, numeric: numeric, repeats: max(repeats, 1)}
}

// runSegment seeds a fresh state at seg.Start and sums the segment. The
// fastest of the repeats is kept for both the seed and the summation.
func (r *calibrationRunner) runSegment(ctx context.Context, seg SegmentCost) (SegmentCost, error) {
	best := seg
	best.Seed, best.Terms = maxDuration, maxDuration

	for range r.repeats {
		seed, terms, err := r.trial(ctx, seg.Start, seg.End)
		if err != nil {
			return seg, err
		}
		best.Seed = min(best.Seed, seed)
		best.Terms = min(best.Terms, terms)
	}
	return best, nil
}

func (r *calibrationRunner) trial(ctx context.Context, start, end int) (seed, terms time.Duration, err error) {
	state := r.family.NewState()
	sum := r.numeric.New()

	t0 := time.Now()
	if err := state.Seed(start, 1); err != nil {
		return 0, 0, err
	}
	seed = time.Since(t0)

	t1 := time.Now()
	for n := start; n < end; n++ {
		if (n-start)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		state.Accumulate(sum)
		if n+1 < end {
			state.Step()
		}
	}
	return seed, time.Since(t1), nil
}
