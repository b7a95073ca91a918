package calibration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

// CalibrationOptions configures a calibration run.
type CalibrationOptions struct {
	// OutputPath receives the ratio table.
	OutputPath string
	// MaxThreads is the largest thread count covered.
	MaxThreads int
	// ProfilePath stores the samples; empty selects the default path.
	ProfilePath string
	// SaveProfile writes the samples to ProfilePath.
	SaveProfile bool
	// LoadProfile reuses valid samples from ProfilePath instead of sampling.
	LoadProfile bool
	// Quiet hides the progress bar.
	Quiet bool
	// Bench samples the costs; nil selects NewMicroBenchmark.
	Bench *MicroBenchmark
}

// RunCalibration samples this machine and writes the cheater ratio table
// selected by cfg. It returns the process exit code.
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer) int {
	bench := NewMicroBenchmark()
	bench.Precision = max(bench.Precision, cfg.Precision)

	output := cfg.RatiosPath
	if output == "" {
		output = pi.DefaultRatiosPath
	}
	return RunCalibrationWithOptions(ctx, out, CalibrationOptions{
		OutputPath:  output,
		MaxThreads:  cfg.CalibrateThreads,
		SaveProfile: true,
		Quiet:       cfg.Quiet,
		Bench:       bench,
	})
}

// RunCalibrationWithOptions runs a calibration with explicit options.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - out: The destination of the calibration report.
//   - opts: The ratio table path, thread range and benchmark.
//
// Returns:
//   - int: The exit code of the calibration.
func RunCalibrationWithOptions(ctx context.Context, out io.Writer, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Balancing the Cheater Distribution ---\n")

	profile, loaded := NewProfile(), false
	if opts.LoadProfile {
		profile, loaded = LoadOrCreateProfile(opts.ProfilePath)
		if loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile%s: %s\n",
				ui.ColorGreen(), ui.ColorReset(), profile.String())
		}
	}

	costs := profile.Costs()
	if !loaded {
		bench := opts.Bench
		if bench == nil {
			bench = NewMicroBenchmark()
		}
		fmt.Fprintf(out, "%sSampling %d segments of %d-decimal Chudnovsky terms on %d CPU cores%s\n",
			ui.ColorCyan(), bench.Segments, bench.Precision, runtime.NumCPU(), ui.ColorReset())

		var err error
		costs, err = sample(ctx, bench, out, opts.Quiet)
		if err != nil {
			if apperrors.IsContextError(err) {
				fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", ui.ColorYellow(), ui.ColorReset())
			}
			return apperrors.HandleCalculationError(err, costs.Duration, out, cli.CLIColorProvider{})
		}
		printSamples(out, costs)
	}

	table, err := BuildRatioTable(costs, opts.MaxThreads)
	if err != nil {
		fmt.Fprintf(out, "%sCalibration failed: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	counts := ThreadCounts(opts.MaxThreads)
	printCalibrationResults(out, table, counts)

	if err := writeRatioTable(opts.OutputPath, table); err != nil {
		fmt.Fprintf(out, "%sCould not write the ratio table: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitCode(err)
	}
	fmt.Fprintf(out, "\n%s✅ Ratio table for up to %d threads written to %s%s%s\n",
		ui.ColorGreen(), counts[len(counts)-1], ui.ColorYellow(), opts.OutputPath, ui.ColorReset())

	if opts.SaveProfile && !loaded {
		profile.SetCosts(costs)
		profile.MaxThreads = opts.MaxThreads
		profile.RatiosPath = opts.OutputPath
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// sample runs bench, showing its progress unless quiet.
func sample(ctx context.Context, bench *MicroBenchmark, out io.Writer, quiet bool) (CostProfile, error) {
	if quiet {
		return bench.Run(ctx)
	}

	progressChan := make(chan pi.ProgressUpdate, DefaultSegments)
	var wg sync.WaitGroup
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)

	withProgress := *bench
	withProgress.Progress = func(done float64) {
		select {
		case progressChan <- pi.ProgressUpdate{Value: done}:
		default:
		}
	}
	costs, err := withProgress.Run(ctx)
	close(progressChan)
	wg.Wait()
	return costs, err
}
