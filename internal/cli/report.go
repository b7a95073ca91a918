package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

// CSVPrefix opens every CSV line and identifies this implementation.
const CSVPrefix = "GO"

// Summary is the printable outcome of one calculation.
type Summary struct {
	Library    string
	Tag        string
	Precision  int
	Iterations int
	Threads    int
	Workers    int
	Bits       uint
	Correct    int
	Duration   time.Duration
}

// NewSummary combines a result with its verified decimal count.
func NewSummary(r *pi.Result, correct int) Summary {
	return Summary{
		Library:    string(r.Algorithm.Library),
		Tag:        r.Tag(),
		Precision:  r.Precision,
		Iterations: r.Iterations,
		Threads:    r.Threads,
		Workers:    r.Workers,
		Bits:       r.Bits,
		Correct:    correct,
		Duration:   r.Duration,
	}
}

// Reached reports whether the requested precision was achieved.
func (s Summary) Reached() bool {
	return s.Correct >= s.Precision
}

// Seconds returns the duration in seconds, formatted with six decimals.
func (s Summary) Seconds() string {
	return fmt.Sprintf("%f", s.Duration.Seconds())
}

// FormatCSV renders "GO;LIB;TAG;PRECISION;ITERATIONS;THREADS;DECIMALS;SECONDS;".
func FormatCSV(s Summary) string {
	return fmt.Sprintf("%s;%s;%s;%d;%d;%d;%d;%s;",
		CSVPrefix, s.Library, s.Tag, s.Precision, s.Iterations, s.Threads, s.Correct, s.Seconds())
}

// WriteCSV prints the CSV line of s.
func WriteCSV(out io.Writer, s Summary) {
	fmt.Fprintln(out, FormatCSV(s))
}

// WriteReport prints the human-readable report of a run. With details it
// also shows the working precision in bits and the number of workers.
func WriteReport(out io.Writer, s Summary, details bool) {
	fmt.Fprintf(out, "  Library used: %s%s%s\n", ui.ColorCyan(), s.Library, ui.ColorReset())
	fmt.Fprintf(out, "  Algorithm: %s%s%s\n", ui.ColorBlue(), s.Tag, ui.ColorReset())
	fmt.Fprintf(out, "  Precision used: %d\n", s.Precision)
	fmt.Fprintf(out, "  Number of iterations: %d\n", s.Iterations)
	fmt.Fprintf(out, "  Number of threads: %d\n", s.Threads)
	if details {
		fmt.Fprintf(out, "  Working precision: %d bits\n", s.Bits)
		fmt.Fprintf(out, "  Workers started: %d\n", s.Workers)
	}
	if s.Reached() {
		fmt.Fprintf(out, "  Correct decimals: %s%d%s\n", ui.ColorGreen(), s.Correct, ui.ColorReset())
	} else {
		fmt.Fprintf(out, "  %sSomething went wrong. The execution just achieved %d decimals%s\n",
			ui.ColorRed(), s.Correct, ui.ColorReset())
	}
	fmt.Fprintf(out, "  Execution time: %s%s seconds%s\n", ui.ColorYellow(), s.Seconds(), ui.ColorReset())
	fmt.Fprintln(out)
}

const title = `
   ____  _            _
  |  _ \(_) ___  __ _| | ___
  | |_) | |/ __|/ _' | |/ __|
  |  __/| | (__| (_| | | (__
  |_|   |_|\___|\__,_|_|\___|

  Parallel computation of the decimals of π
`

// PrintTitle prints the banner.
func PrintTitle(out io.Writer) {
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorBold(), title, ui.ColorReset())
}

// PrintExecutionConfig shows what is about to run.
func PrintExecutionConfig(out io.Writer, precision, threads int, timeout time.Duration) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Computing %s%d%s decimals of π with %s%d%s threads, timeout %s%s%s.\n",
		ui.ColorMagenta(), precision, ui.ColorReset(),
		ui.ColorMagenta(), threads, ui.ColorReset(),
		ui.ColorYellow(), timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode announces a single run or a comparison.
func PrintExecutionMode(out io.Writer, calculators []pi.Calculator) {
	if len(calculators) > 1 {
		names := make([]string, len(calculators))
		for i, c := range calculators {
			names[i] = c.Name()
		}
		fmt.Fprintf(out, "Execution mode: comparison of %d algorithms (%s).\n", len(calculators), strings.Join(names, ", "))
	} else if len(calculators) == 1 {
		fmt.Fprintf(out, "Execution mode: single calculation with %s%s%s.\n",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
