package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies terminal colour codes without importing the cli
// package.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// DefaultColorProvider provides no colour codes.
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Red() string    { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// HandleCalculationError prints a diagnostic for err and returns the exit
// code the process should terminate with.
//
// Parameters:
//   - err: The error that occurred.
//   - duration: How long the run lasted before failing (0 to omit).
//   - out: Destination of the diagnostic.
//   - colors: Colour codes (nil for none).
//
// Returns:
//   - int: The exit code for err.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	var (
		cfgErr ConfigError
		selErr UnsupportedSelectionError
		resErr ResourceError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
	case errors.As(err, &cfgErr):
		fmt.Fprintf(out, "%s%s%s\n", colors.Red(), cfgErr.Message, colors.Reset())
		if cfgErr.Suggestion != "" {
			fmt.Fprintln(out, cfgErr.Suggestion)
		}
	case errors.As(err, &selErr):
		fmt.Fprintf(out, "%s%s%s\n", colors.Red(), selErr.Error(), colors.Reset())
	case errors.As(err, &resErr):
		fmt.Fprintf(out, "%s%s not found or unreadable%s: %v\n", colors.Red(), resErr.Path, colors.Reset(), resErr.Cause)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return ExitCode(err)
}
