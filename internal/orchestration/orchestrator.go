// Package orchestration runs one or several calculators for the CLI, shows
// their progress, verifies their digits and summarises comparison runs.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/picalc/internal/cli"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

// CalculationResult is the outcome of one calculator.
type CalculationResult struct {
	Name   string
	Result *pi.Result
	// Correct is the number of verified decimals; 0 when Err is set.
	Correct  int
	Duration time.Duration
	Err      error
}

// Reached reports whether the calculation succeeded with full precision.
func (r CalculationResult) Reached() bool {
	return r.Err == nil && r.Correct >= r.Result.Precision
}

// Verifier counts the correct decimals of a value. *verify.Reference
// implements it.
type Verifier interface {
	Check(x *big.Float) int
}

// ProgressBufferMultiplier sizes the progress channel per calculator.
const ProgressBufferMultiplier = 5

// ExecuteCalculations runs the calculators one at a time so that each run
// owns every core, and verifies each result. Results keep the order of
// calculators. Progress is drawn on out.
//
// Parameters:
//   - ctx: The context for cancellation and timeout.
//   - calculators: The calculators to run.
//   - precision: The number of decimals requested.
//   - opts: The thread count and ratio table location.
//   - verifier: Counts the correct decimals of each result.
//   - out: The destination of the progress display.
//
// Returns:
//   - []CalculationResult: One entry per calculator.
func ExecuteCalculations(ctx context.Context, calculators []pi.Calculator, precision int, opts pi.Options, verifier Verifier, out io.Writer) []CalculationResult {
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan pi.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	var g errgroup.Group
	g.SetLimit(1)
	for i, calc := range calculators {
		g.Go(func() error {
			start := time.Now()
			res, err := calc.Calculate(ctx, progressChan, i, precision, opts)
			r := CalculationResult{Name: calc.Name(), Result: res, Duration: time.Since(start), Err: err}
			if err == nil {
				r.Duration = res.Duration
				r.Correct = verifier.Check(res.Pi)
			}
			log.Debug().Str("algo", r.Name).Int("correct", r.Correct).Err(err).Msg("calculator finished")
			results[i] = r
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

// AnalyzeComparisonResults prints a table of the results, fastest first,
// and returns the exit code of the comparison: success when every
// calculator reached the precision, a mismatch when one fell short, and
// the code of the first error when none succeeded.
//
// Parameters:
//   - results: The results of ExecuteCalculations.
//   - out: The destination of the table.
//
// Returns:
//   - int: The exit code of the comparison.
func AnalyzeComparisonResults(results []CalculationResult, out io.Writer) int {
	sorted := make([]CalculationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if (sorted[i].Err == nil) != (sorted[j].Err == nil) {
			return sorted[i].Err == nil
		}
		return sorted[i].Duration < sorted[j].Duration
	})

	var firstError error
	successCount, shortCount := 0, 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sIterations%s\t%sDecimals%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(),
		ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset())

	for _, res := range sorted {
		iterations, decimals := "-", "-"
		var status string
		switch {
		case res.Err != nil:
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		case res.Reached():
			successCount++
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		default:
			successCount++
			shortCount++
			status = fmt.Sprintf("%s⚠️ Short of %d decimals%s", ui.ColorYellow(), res.Result.Precision-res.Correct, ui.ColorReset())
		}
		if res.Result != nil {
			iterations = fmt.Sprint(res.Result.Iterations)
			decimals = fmt.Sprint(res.Correct)
		}
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%s%s%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			iterations, decimals,
			ui.ColorYellow(), cli.FormatExecutionDuration(res.Duration), ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the calculation.\n")
		return apperrors.HandleCalculationError(firstError, 0, out, cli.CLIColorProvider{})
	}
	if shortCount > 0 {
		fmt.Fprintf(out, "\nGlobal Status: %d algorithm(s) did not reach the requested precision.\n", shortCount)
		return apperrors.ExitErrorMismatch
	}
	if firstError != nil {
		fmt.Fprintf(out, "\nGlobal Status: Partial success. Some algorithms failed.\n")
		return apperrors.ExitCode(firstError)
	}
	fmt.Fprintf(out, "\nGlobal Status: Success. Every algorithm reached the requested precision.\n")
	return apperrors.ExitSuccess
}

// ComparisonExitCode returns the exit code AnalyzeComparisonResults would
// return, without printing anything.
func ComparisonExitCode(results []CalculationResult) int {
	var firstError error
	successCount, shortCount := 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			if firstError == nil {
				firstError = res.Err
			}
		case res.Reached():
			successCount++
		default:
			successCount++
			shortCount++
		}
	}
	switch {
	case successCount == 0:
		return apperrors.ExitCode(firstError)
	case shortCount > 0:
		return apperrors.ExitErrorMismatch
	default:
		return apperrors.ExitCode(firstError)
	}
}

// Fastest returns the quickest successful result, or nil.
func Fastest(results []CalculationResult) *CalculationResult {
	var best *CalculationResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}
