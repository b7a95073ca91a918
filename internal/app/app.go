package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/agbru/picalc/internal/calibration"
	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/series"
	"github.com/agbru/picalc/internal/server"
	"github.com/agbru/picalc/internal/ui"
	"github.com/agbru/picalc/internal/verify"
)

// Application is one invocation of picalc: a configuration and the
// calculators it may run.
type Application struct {
	Config  config.AppConfig
	Factory *pi.DefaultFactory
	// ErrWriter receives diagnostics that must not mix with the results,
	// typically os.Stderr.
	ErrWriter io.Writer
}

// New parses args (program name first) and configures logging.
//
// Parameters:
//   - args: The command-line arguments, program name first.
//   - errWriter: The destination of usage and diagnostics.
//
// Returns:
//   - *Application: The configured application.
//   - error: A help error for -h, or a configuration error.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "picalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, apperrors.NewConfigError("%v", err)
	}
	logging.Configure(logging.Options{
		Level:   level,
		Output:  errWriter,
		JSON:    cfg.JSONOutput,
		NoColor: cfg.NoColor,
	})

	return &Application{
		Config:    cfg,
		Factory:   pi.GlobalFactory(),
		ErrWriter: errWriter,
	}, nil
}

// Run dispatches to the selected mode and returns the exit code.
//
// Parameters:
//   - ctx: The parent context. Timeout and signals are layered on it.
//   - out: The destination of results.
//
// Returns:
//   - int: The process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor || a.Config.CSV || a.Config.JSONOutput)

	switch {
	case a.Config.ServerMode:
		return a.runServer()
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	default:
		return a.runCalculate(ctx, out)
	}
}

func (a *Application) runCompletion(out io.Writer) int {
	libraries := make([]string, 0, 2)
	var ids []string
	seen := make(map[string]bool)
	for _, lib := range pi.Libraries() {
		libraries = append(libraries, string(lib))
		for _, alg := range pi.Algorithms(lib) {
			id := fmt.Sprint(alg.ID)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	ids = append(ids, config.AlgoAll)

	if err := cli.GenerateCompletion(out, a.Config.Completion, libraries, ids, series.Kinds(), partition.Names()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config,
		server.WithLogger(logging.NewLogger(a.ErrWriter, "server")))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()
	return calibration.RunCalibration(ctx, a.Config, out)
}

// humanOutput reports whether the banner, progress and report are shown.
func (a *Application) humanOutput() bool {
	return !a.Config.Quiet && !a.Config.CSV && !a.Config.JSONOutput
}

// runCalculate computes π with the selected algorithms and reports how
// many decimals are correct.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()

	errOut := out
	if !a.humanOutput() {
		errOut = a.ErrWriter
	}

	referencePath := a.Config.ReferencePath
	if referencePath == "" {
		referencePath = verify.DefaultReferencePath
	}
	ref, err := verify.LoadReference(referencePath)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, errOut, cli.CLIColorProvider{})
	}
	if a.Config.Precision > ref.Decimals() {
		err := apperrors.NewConfigError("precision %d exceeds the %d decimals of %s", a.Config.Precision, ref.Decimals(), referencePath)
		return apperrors.HandleCalculationError(err, 0, errOut, cli.CLIColorProvider{})
	}

	calculators, err := cli.GetCalculatorsToRun(a.Config, a.Factory)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, errOut, cli.CLIColorProvider{})
	}

	progressOut := io.Discard
	if a.humanOutput() {
		cli.PrintTitle(out)
		cli.PrintExecutionConfig(out, a.Config.Precision, a.Config.Threads, a.Config.Timeout)
		cli.PrintExecutionMode(out, calculators)
		progressOut = out
	}

	results := orchestration.ExecuteCalculations(ctx, calculators, a.Config.Precision,
		a.Config.CalculationOptions(), ref, progressOut)

	switch {
	case a.Config.JSONOutput:
		return a.reportJSON(results, out)
	case a.Config.CSV:
		return a.reportCSV(results, out)
	case len(results) == 1:
		return a.reportSingle(results[0], out)
	default:
		return a.reportComparison(results, out)
	}
}

// reportSingle prints the report of one run. A run that falls short of the
// requested precision still exits successfully; the report says so.
func (a *Application) reportSingle(res orchestration.CalculationResult, out io.Writer) int {
	if res.Err != nil {
		if !a.Config.Quiet {
			fmt.Fprintln(out)
		}
		return apperrors.HandleCalculationError(res.Err, res.Duration, out, cli.CLIColorProvider{})
	}

	if a.Config.Quiet {
		cli.DisplayQuietResult(out, res.Result)
	} else {
		fmt.Fprintln(out)
		cli.WriteReport(out, cli.NewSummary(res.Result, res.Correct), a.Config.Details)
		if a.Config.Verbose || a.Config.Details {
			cli.DisplayDigits(out, res.Result, a.Config.Verbose)
		}
	}
	return a.saveResult(&res, out)
}

func (a *Application) reportComparison(results []orchestration.CalculationResult, out io.Writer) int {
	var code int
	if a.Config.Quiet {
		code = orchestration.ComparisonExitCode(results)
	} else {
		code = orchestration.AnalyzeComparisonResults(results, out)
	}

	best := orchestration.Fastest(results)
	if best == nil {
		return code
	}
	if a.Config.Quiet {
		cli.DisplayQuietResult(out, best.Result)
	}
	if saved := a.saveResult(best, out); saved != apperrors.ExitSuccess {
		return saved
	}
	return code
}

// reportCSV prints one line per successful run and the errors on ErrWriter.
func (a *Application) reportCSV(results []orchestration.CalculationResult, out io.Writer) int {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(a.ErrWriter, "%s: %v\n", res.Name, res.Err)
			continue
		}
		cli.WriteCSV(out, cli.NewSummary(res.Result, res.Correct))
	}
	if len(results) == 1 {
		return apperrors.ExitCode(results[0].Err)
	}
	return orchestration.ComparisonExitCode(results)
}

// saveResult writes the digits of res when an output file is configured.
func (a *Application) saveResult(res *orchestration.CalculationResult, out io.Writer) int {
	path := a.Config.OutputFile
	if path == "" {
		return apperrors.ExitSuccess
	}
	if err := cli.WriteResultToFile(res.Result, res.Correct, path); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if a.humanOutput() {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
	}
	return apperrors.ExitSuccess
}

// jsonResult is one run in the JSON output.
type jsonResult struct {
	Library    string  `json:"library,omitempty"`
	Algorithm  string  `json:"algorithm"`
	Precision  int     `json:"precision"`
	Iterations int     `json:"iterations,omitempty"`
	Threads    int     `json:"threads,omitempty"`
	Decimals   int     `json:"decimals"`
	Reached    bool    `json:"reached"`
	Seconds    float64 `json:"seconds"`
	Digits     string  `json:"digits,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (a *Application) reportJSON(results []orchestration.CalculationResult, out io.Writer) int {
	output := make([]jsonResult, len(results))
	for i, res := range results {
		jr := jsonResult{
			Algorithm: res.Name,
			Precision: a.Config.Precision,
			Seconds:   res.Duration.Seconds(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			jr.Library = string(res.Result.Algorithm.Library)
			jr.Iterations = res.Result.Iterations
			jr.Threads = res.Result.Threads
			jr.Decimals = res.Correct
			jr.Reached = res.Reached()
			if a.Config.Verbose {
				jr.Digits = cli.Digits(res.Result)
			}
		}
		output[i] = jr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return apperrors.ExitErrorGeneric
	}
	if len(results) == 1 {
		return apperrors.ExitCode(results[0].Err)
	}
	return orchestration.ComparisonExitCode(results)
}

// IsHelpError reports whether err comes from -h or -help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
