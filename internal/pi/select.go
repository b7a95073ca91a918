package pi

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/agbru/picalc/internal/bigfloat"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/partition"
)

// Plan is a validated run: how many terms to sum, on how many workers and at
// which precision.
type Plan struct {
	Algorithm  Algorithm
	Precision  int
	Iterations int
	// Threads is the thread count the run was requested with.
	Threads int
	// Workers is the number of goroutines that actually sum terms.
	Workers int
	Numeric bigfloat.Context
}

// Select validates a request and derives its plan. Validation happens before
// any numeric allocation so that rejected requests cost nothing.
//
// Rules, in order:
//   - precision must be positive;
//   - a thread count below one is promoted to one;
//   - the scheme must accept the thread count;
//   - there must be at least one term per thread.
//
// Parameters:
//   - alg: The algorithm to run.
//   - precision: The number of decimals requested.
//   - threads: The requested worker count.
//
// Returns:
//   - Plan: The iterations, workers and bit precision of the run.
//   - error: An error describing the first violated rule.
func Select(alg Algorithm, precision, threads int) (Plan, error) {
	if precision <= 0 {
		return Plan{}, apperrors.NewConfigErrorWithSuggestion(
			"Precision should be greater than cero.",
			"Request at least one decimal.")
	}
	if threads < 1 {
		log.Warn().Int("threads", threads).Msg("thread count below one, using a single thread")
		threads = 1
	}
	if err := partition.ValidateThreads(alg.Scheme, threads); err != nil {
		return Plan{}, err
	}

	iterations := alg.Series.Iterations(precision)
	if iterations < threads {
		return Plan{}, apperrors.NewConfigErrorWithSuggestion(
			fmt.Sprintf("Precision too small to be solved with %d threads.", threads),
			"Try using a greater precision or lower threads number.")
	}

	workers := alg.Scheme.Workers(threads)
	if alg.Series.Sequential() && threads > 1 {
		log.Warn().
			Str("algo", alg.Tag()).
			Int("threads", threads).
			Msg("series is strictly sequential, running on a single worker")
	}

	return Plan{
		Algorithm:  alg,
		Precision:  precision,
		Iterations: iterations,
		Threads:    threads,
		Workers:    workers,
		Numeric:    bigfloat.ForDecimals(precision, alg.Library.RoundingMode()),
	}, nil
}
