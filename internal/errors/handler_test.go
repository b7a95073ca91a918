package apperrors

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"
)

type MockColorProvider struct{}

func (m MockColorProvider) Yellow() string { return "[YELLOW]" }
func (m MockColorProvider) Red() string    { return "[RED]" }
func (m MockColorProvider) Reset() string  { return "[RESET]" }

func TestHandleCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		err          error
		duration     time.Duration
		colors       ColorProvider
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "No Error",
			err:          nil,
			expectedCode: ExitSuccess,
			expectedMsg:  "",
		},
		{
			name:         "Timeout Error",
			err:          context.DeadlineExceeded,
			duration:     1 * time.Second,
			colors:       MockColorProvider{},
			expectedCode: ExitErrorTimeout,
			expectedMsg:  "Status: Failure (Timeout). The execution limit was reached after [YELLOW]1s[RESET].",
		},
		{
			name:         "Canceled Error",
			err:          context.Canceled,
			duration:     500 * time.Millisecond,
			colors:       MockColorProvider{},
			expectedCode: ExitErrorCanceled,
			expectedMsg:  "[YELLOW]Status: Canceled after [YELLOW]500ms[RESET].[RESET]",
		},
		{
			name:         "Generic Error",
			err:          fmt.Errorf("random error"),
			expectedCode: ExitErrorGeneric,
			expectedMsg:  "Status: Failure. An unexpected error occurred: random error",
		},
		{
			name:         "Config Error With Suggestion",
			err:          NewConfigErrorWithSuggestion("Precision too small to be solved with 4 threads.", "Try using a greater precision or lower threads number."),
			colors:       MockColorProvider{},
			expectedCode: ExitErrorConfig,
			expectedMsg:  "[RED]Precision too small to be solved with 4 threads.[RESET]\nTry using a greater precision or lower threads number.",
		},
		{
			name:         "Resource Error",
			err:          NewResourceError("numero_pi_correcto.txt", fs.ErrNotExist),
			expectedCode: ExitErrorResource,
			expectedMsg:  "numero_pi_correcto.txt not found or unreadable: file does not exist",
		},
		{
			name:         "Unsupported Selection",
			err:          UnsupportedSelectionError{Library: "FLINT", Valid: []string{"GMP", "MPFR"}},
			expectedCode: ExitErrorConfig,
			expectedMsg:  `unsupported library "FLINT"`,
		},
		{
			name:         "Default Colors",
			err:          context.DeadlineExceeded,
			duration:     1 * time.Second,
			colors:       nil,
			expectedCode: ExitErrorTimeout,
			expectedMsg:  "Status: Failure (Timeout). The execution limit was reached after 1s.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := new(bytes.Buffer)
			code := HandleCalculationError(tt.err, tt.duration, out, tt.colors)

			if code != tt.expectedCode {
				t.Errorf("HandleCalculationError() code = %v, want %v", code, tt.expectedCode)
			}

			if tt.expectedMsg != "" && !strings.Contains(out.String(), tt.expectedMsg) {
				t.Errorf("HandleCalculationError() output = %q, want %q", out.String(), tt.expectedMsg)
			}
		})
	}
}

func TestDefaultColorProvider(t *testing.T) {
	t.Parallel()
	p := DefaultColorProvider{}
	if p.Yellow() != "" {
		t.Error("DefaultColorProvider.Yellow should return empty string")
	}
	if p.Red() != "" {
		t.Error("DefaultColorProvider.Red should return empty string")
	}
	if p.Reset() != "" {
		t.Error("DefaultColorProvider.Reset should return empty string")
	}
}
