// Package service is the façade shared by the HTTP server: it resolves a
// catalogued algorithm, runs it and verifies the digits against the
// reference file.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/verify"
)

var (
	// ErrMaxPrecisionExceeded is returned when a request asks for more
	// decimals than the service allows.
	ErrMaxPrecisionExceeded = errors.New("maximum precision exceeded")
	// ErrMaxThreadsExceeded is returned when a request asks for more
	// workers than the service allows.
	ErrMaxThreadsExceeded = errors.New("maximum threads exceeded")
)

// Limits bounds the resources a single request may use. A zero field
// disables that bound.
type Limits struct {
	MaxPrecision int
	MaxThreads   int
}

// Request selects a catalogued algorithm and its run parameters.
type Request struct {
	Library   pi.Library
	Algorithm int
	Precision int
	Threads   int
}

// Outcome is a verified result.
type Outcome struct {
	Result *pi.Result
	// Correct is the number of decimals matching the reference.
	Correct int
}

// Reached reports whether the requested precision was achieved.
func (o *Outcome) Reached() bool {
	return o.Correct >= o.Result.Precision
}

// Service runs verified calculations.
type Service interface {
	Calculate(ctx context.Context, req Request) (*Outcome, error)
}

// CalculatorSource resolves catalogued calculators. *pi.DefaultFactory
// implements it.
type CalculatorSource interface {
	Resolve(lib pi.Library, id int) (pi.Calculator, error)
}

// CalculatorService implements Service.
type CalculatorService struct {
	source        CalculatorSource
	opts          pi.Options
	limits        Limits
	referencePath string

	refOnce sync.Once
	ref     *verify.Reference
	refErr  error
}

var _ Service = (*CalculatorService)(nil)

// NewCalculatorService creates a service over source.
//
// Parameters:
//   - source: Resolves the catalogued calculators.
//   - opts: Run options; Threads is ignored, each request carries its own.
//   - limits: The per-request precision and thread bounds.
//   - referencePath: The reference digits; empty selects the bundled file.
//
// Returns:
//   - *CalculatorService: The service, loading the reference on first use.
func NewCalculatorService(source CalculatorSource, opts pi.Options, limits Limits, referencePath string) *CalculatorService {
	if referencePath == "" {
		referencePath = verify.DefaultReferencePath
	}
	return &CalculatorService{
		source:        source,
		opts:          opts,
		limits:        limits,
		referencePath: referencePath,
	}
}

// Reference loads the reference digits once.
func (s *CalculatorService) Reference() (*verify.Reference, error) {
	s.refOnce.Do(func() {
		s.ref, s.refErr = verify.LoadReference(s.referencePath)
	})
	return s.ref, s.refErr
}

// Calculate validates the request against the limits, runs the
// calculation and counts the correct decimals.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - req: The library, algorithm id, precision and thread count.
//
// Returns:
//   - *Outcome: The result and its number of correct decimals.
//   - error: ErrMaxPrecisionExceeded, ErrMaxThreadsExceeded, or a selection,
//     configuration or calculation error.
func (s *CalculatorService) Calculate(ctx context.Context, req Request) (*Outcome, error) {
	if s.limits.MaxPrecision > 0 && req.Precision > s.limits.MaxPrecision {
		return nil, fmt.Errorf("%w: %d > %d", ErrMaxPrecisionExceeded, req.Precision, s.limits.MaxPrecision)
	}
	if s.limits.MaxThreads > 0 && req.Threads > s.limits.MaxThreads {
		return nil, fmt.Errorf("%w: %d > %d", ErrMaxThreadsExceeded, req.Threads, s.limits.MaxThreads)
	}
	ref, err := s.Reference()
	if err != nil {
		return nil, err
	}
	calc, err := s.source.Resolve(req.Library, req.Algorithm)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	opts.Threads = req.Threads
	res, err := calc.Calculate(ctx, nil, 0, req.Precision, opts)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: res, Correct: ref.Check(res.Pi)}, nil
}
