// Package cli renders picalc runs on a terminal: the execution banner, the
// spinner with progress and ETA, the result report, the CSV line, and the
// digit output.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width of the bar in characters.
	ProgressBarWidth = 40
)

// CLIColorProvider feeds the error handler with the active theme.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// Spinner abstracts the terminal spinner so that DisplayProgress can be
// tested.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// ProgressState keeps the last reported fraction of each calculator.
type ProgressState struct {
	progresses []float64
}

// NewProgressState tracks numCalculators calculators.
func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{progresses: make([]float64, numCalculators)}
}

// Update records value for calculator index; out-of-range indexes are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

func progressBar(progress float64, length int) string {
	progress = max(0, min(progress, 1))
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

func progressLabel(numCalculators int) string {
	if numCalculators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress drives the spinner until progressChan is closed, then
// prints a final 100% line. It is meant to run in its own goroutine and
// calls wg.Done on return.
//
// Parameters:
//   - wg: The wait group released on return.
//   - progressChan: The progress updates of every calculator.
//   - numCalculators: The number of calculators averaged.
//   - out: The destination of the progress line.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan pi.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numCalculators)
	label := progressLabel(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1.0, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label,
				FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

// FormatExecutionDuration renders short durations in µs or ms.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}
