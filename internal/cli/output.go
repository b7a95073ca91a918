package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/picalc/internal/bigfloat"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

const (
	// TruncationLimit is the number of decimals above which the terminal
	// output is shortened unless -v is given.
	TruncationLimit = 100
	// DisplayEdges is the number of digits kept on each side of a shortened
	// value.
	DisplayEdges = 25
)

// OutputConfig drives digit output.
type OutputConfig struct {
	OutputFile string
	Quiet      bool
	Verbose    bool
}

// Digits returns π formatted with the requested number of decimals.
func Digits(r *pi.Result) string {
	return bigfloat.Format(r.Pi, r.Precision)
}

// DisplayDigits prints the computed value, shortened for long values unless
// verbose is set.
func DisplayDigits(out io.Writer, r *pi.Result, verbose bool) {
	digits := Digits(r)
	fmt.Fprintf(out, "%s--- Computed value ---%s\n", ui.ColorBold(), ui.ColorReset())
	if verbose || r.Precision <= TruncationLimit {
		fmt.Fprintf(out, "π = %s%s%s\n", ui.ColorGreen(), digits, ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "π (truncated) = %s%s...%s%s\n",
		ui.ColorGreen(), digits[:2+DisplayEdges], digits[len(digits)-DisplayEdges:], ui.ColorReset())
	fmt.Fprintf(out, "(Tip: use the %s-v%s option to display every decimal)\n", ui.ColorYellow(), ui.ColorReset())
}

// DisplayQuietResult prints the digits alone, for scripts.
func DisplayQuietResult(out io.Writer, r *pi.Result) {
	fmt.Fprintln(out, Digits(r))
}

// WriteResultToFile saves the digits with a commented header. Missing
// parent directories are created.
//
// Parameters:
//   - r: The result to save.
//   - correct: The verified decimals, printed in the header.
//   - path: The destination file.
//
// Returns:
//   - error: An error if the directory or the file cannot be written.
func WriteResultToFile(r *pi.Result, correct int, path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# π Calculation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", r.Tag())
	fmt.Fprintf(file, "# Precision: %d\n", r.Precision)
	fmt.Fprintf(file, "# Iterations: %d\n", r.Iterations)
	fmt.Fprintf(file, "# Threads: %d\n", r.Threads)
	fmt.Fprintf(file, "# Correct decimals: %d\n", correct)
	fmt.Fprintf(file, "# Duration: %s\n\n", r.Duration)
	if _, err := fmt.Fprintln(file, Digits(r)); err != nil {
		return err
	}
	return file.Close()
}
