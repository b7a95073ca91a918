package calibration

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/agbru/picalc/internal/cli"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/ui"
)

// printSamples prints the measured cost of each segment.
func printSamples(out io.Writer, p CostProfile) {
	fmt.Fprintf(out, "\n--- Sampled Term Cost (%d decimals, %d terms) ---\n", p.Precision, p.Iterations)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  Terms\t│ Seed\t│ Per term\n")
	fmt.Fprintf(tw, "  %s\t┼%s\t┼%s\n", strings.Repeat("─", 12), strings.Repeat("─", 12), strings.Repeat("─", 12))
	for _, s := range p.Segments {
		fmt.Fprintf(tw, "  %s%d-%d%s\t│ %s\t│ %s%.0f ns%s\n",
			ui.ColorCyan(), s.Start, s.End-1, ui.ColorReset(),
			cli.FormatExecutionDuration(s.Seed),
			ui.ColorYellow(), s.PerTerm(), ui.ColorReset())
	}
	tw.Flush()
}

// printCalibrationResults shows, per thread count, the share of the first
// and last thread.
func printCalibrationResults(out io.Writer, table *partition.RatioTable, counts []int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  Threads\t│ First thread\t│ Last thread\t│ Total\n")
	fmt.Fprintf(tw, "  %s\t┼%s\t┼%s\t┼%s\n",
		strings.Repeat("─", 8), strings.Repeat("─", 13), strings.Repeat("─", 12), strings.Repeat("─", 8))
	for _, threads := range counts {
		first, _ := table.Ratio(threads, 0)
		last, _ := table.Ratio(threads, threads-1)
		fmt.Fprintf(tw, "  %s%d%s\t│ %.3f%%\t│ %.3f%%\t│ %.1f%%\n",
			ui.ColorCyan(), threads, ui.ColorReset(), first, last, table.Sum(threads))
	}
	tw.Flush()
}

// writeRatioTable replaces the file at path with table.
func writeRatioTable(path string, table *partition.RatioTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewResourceError(path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewResourceError(path, err)
	}
	if _, err := table.WriteTo(f); err != nil {
		f.Close()
		return apperrors.NewResourceError(path, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewResourceError(path, err)
	}
	return nil
}
