package partition

import (
	"errors"
	"fmt"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// ErrRatiosRequired is returned when the cheater scheme is planned without a
// ratio table.
var ErrRatiosRequired = errors.New("partition: cheater scheme requires a ratio table")

// ValidateThreads rejects thread counts the scheme cannot distribute.
// The ratio table only has columns for 2 threads and for multiples of 4.
func ValidateThreads(s Scheme, threads int) error {
	if threads < 1 {
		return apperrors.NewConfigError("number of threads must be at least 1, got %d", threads)
	}
	if s != Cheater || threads == 1 || threads == 2 {
		return nil
	}
	if threads%4 != 0 || threads > MaxRatioThreads {
		return apperrors.NewConfigErrorWithSuggestion(
			fmt.Sprintf("The cheater distribution cannot be used with %d threads.", threads),
			fmt.Sprintf("Use 1, 2 or a multiple of 4 threads up to %d.", MaxRatioThreads))
	}
	return nil
}

// Plan returns the ranges assigned to worker tid of threads when summing
// iterations terms with scheme s. ratios is only consulted by Cheater.
//
// With a single thread every scheme yields the full range [0, iterations).
func Plan(s Scheme, iterations, threads, tid int, ratios *RatioTable) ([]Range, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("partition: negative iteration count %d", iterations)
	}
	if threads < 1 || tid < 0 || tid >= threads {
		return nil, fmt.Errorf("partition: invalid worker %d of %d", tid, threads)
	}
	if threads == 1 || s == Sequential {
		if tid > 0 {
			return nil, nil
		}
		return []Range{{Start: 0, End: iterations, Stride: 1}}, nil
	}

	switch s {
	case Block:
		size := ceilDiv(iterations, threads)
		start := tid * size
		return []Range{contiguous(start, start+size, iterations)}, nil
	case Cyclic:
		return []Range{{Start: min(tid, iterations), End: iterations, Stride: threads}}, nil
	case Snake:
		size := ceilDiv(iterations, 2*threads)
		first := tid * size
		second := (tid + threads) * size
		return []Range{
			contiguous(first, first+size, iterations),
			contiguous(second, second+size, iterations),
		}, nil
	case Cheater:
		if ratios == nil {
			return nil, ErrRatiosRequired
		}
		return planCheater(iterations, threads, tid, ratios)
	default:
		return nil, fmt.Errorf("partition: unknown scheme %v", s)
	}
}

func planCheater(iterations, threads, tid int, ratios *RatioTable) ([]Range, error) {
	if err := ValidateThreads(Cheater, threads); err != nil {
		return nil, err
	}
	start := 0
	for i := 0; i < tid; i++ {
		size, err := ratioBlock(ratios, iterations, threads, i)
		if err != nil {
			return nil, err
		}
		start += size
	}
	if tid == threads-1 {
		return []Range{contiguous(start, iterations, iterations)}, nil
	}
	size, err := ratioBlock(ratios, iterations, threads, tid)
	if err != nil {
		return nil, err
	}
	return []Range{contiguous(start, start+size, iterations)}, nil
}

func ratioBlock(ratios *RatioTable, iterations, threads, tid int) (int, error) {
	r, err := ratios.Ratio(threads, tid)
	if err != nil {
		return 0, err
	}
	return int(r * float64(iterations) / 100), nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
