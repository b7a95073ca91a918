package parallel

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/agbru/picalc/internal/bigfloat"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/series"
)

// cancelCheckInterval is how many terms a worker sums between two checks of
// its context.
const cancelCheckInterval = 64

// ProgressFunc receives the completed fraction of a reduction, in [0, 1].
// It may be called concurrently by several workers.
type ProgressFunc func(done float64)

// Job describes one reduction.
type Job struct {
	// Iterations is the number of series terms, summed over [0, Iterations).
	Iterations int
	// Threads is the requested thread count. Sequential schemes still plan
	// with it but start a single worker.
	Threads int
	// Scheme selects how the range is split.
	Scheme partition.Scheme
	// Family is the series being summed.
	Family series.Family
	// Precision is the numeric context of partial sums.
	Precision bigfloat.Context
	// Ratios is required by the cheater scheme only.
	Ratios *partition.RatioTable
	// Progress is optional.
	Progress ProgressFunc
}

func (j Job) validate() error {
	switch {
	case j.Family == nil:
		return errors.New("parallel: job has no series family")
	case j.Iterations < 0:
		return fmt.Errorf("parallel: negative iteration count %d", j.Iterations)
	case j.Threads < 1:
		return fmt.Errorf("parallel: thread count must be at least 1, got %d", j.Threads)
	case j.Precision.Prec == 0:
		return errors.New("parallel: job has no precision")
	}
	return nil
}

// Reduce sums job.Family over [0, job.Iterations) and returns the raw sum,
// before the family's closed-form correction.
//
// Each worker owns its recurrence state and partial sum. Partials are stored
// in a slot per worker and added in worker order after the join, so no
// numeric value is ever shared between goroutines.
func Reduce(ctx context.Context, job Job) (*big.Float, error) {
	if err := job.validate(); err != nil {
		return nil, err
	}

	workers := job.Scheme.Workers(job.Threads)
	partials := make([]*big.Float, workers)
	tracker := newProgressTracker(job.Iterations, job.Progress)

	var wg sync.WaitGroup
	var ec ErrorCollector
	wg.Add(workers)
	for tid := 0; tid < workers; tid++ {
		go func(tid int) {
			defer wg.Done()
			partial, err := sumWorker(ctx, job, tid, tracker)
			if err != nil {
				ec.SetError(fmt.Errorf("worker %d: %w", tid, err))
				return
			}
			partials[tid] = partial
		}(tid)
	}
	wg.Wait()
	if err := ec.Err(); err != nil {
		return nil, err
	}

	sum := job.Precision.New()
	for _, p := range partials {
		sum.Add(sum, p)
	}
	tracker.finish()
	return sum, nil
}

// sumWorker sums the ranges planned for worker tid.
func sumWorker(ctx context.Context, job Job, tid int, tracker *progressTracker) (*big.Float, error) {
	ranges, err := partition.Plan(job.Scheme, job.Iterations, job.Threads, tid, job.Ratios)
	if err != nil {
		return nil, err
	}
	sum := job.Precision.New()
	state := job.Family.NewState()
	count := 0
	for _, r := range ranges {
		if r.Empty() {
			continue
		}
		if err := state.Seed(r.Start, r.Stride); err != nil {
			return nil, err
		}
		for n := r.Start; n < r.End; n += r.Stride {
			if count%cancelCheckInterval == 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
				}
			}
			state.Accumulate(sum)
			count++
			tracker.add(1)
			if n+r.Stride < r.End {
				state.Step()
			}
		}
	}
	return sum, nil
}

// progressTracker converts completed terms into throttled progress reports,
// at most one per percent.
type progressTracker struct {
	total  int64
	done   atomic.Int64
	last   atomic.Int64
	report ProgressFunc
}

func newProgressTracker(total int, report ProgressFunc) *progressTracker {
	p := &progressTracker{total: int64(total), report: report}
	p.last.Store(-1)
	return p
}

func (p *progressTracker) add(k int64) {
	if p.report == nil || p.total == 0 {
		return
	}
	done := p.done.Add(k)
	pct := done * 100 / p.total
	for {
		last := p.last.Load()
		if pct <= last {
			return
		}
		if p.last.CompareAndSwap(last, pct) {
			p.report(float64(done) / float64(p.total))
			return
		}
	}
}

// finish reports completion if the last term did not already do it.
func (p *progressTracker) finish() {
	if p.report == nil {
		return
	}
	if p.last.Swap(100) < 100 {
		p.report(1.0)
	}
}
