package pi

import (
	"context"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/parallel"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/series"
)

// DefaultRatiosPath is where the cheater scheme looks for its ratio table
// when none is supplied.
const DefaultRatiosPath = "resources/working_ratios.txt"

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_calculations_total",
			Help: "The total number of π calculations processed",
		},
		[]string{"algorithm", "status"},
	)
	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pi_calculation_duration_seconds",
			Help:    "The duration of π calculations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"algorithm"},
	)
	termsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pi_series_terms_total",
			Help: "The total number of series terms summed",
		},
		[]string{"algorithm"},
	)
)

// Options tunes a single calculation.
type Options struct {
	// Threads is the requested number of threads.
	Threads int
	// Ratios is the work ratio table of the cheater scheme. When nil it is
	// loaded from RatiosPath.
	Ratios *partition.RatioTable
	// RatiosPath defaults to DefaultRatiosPath.
	RatiosPath string
}

// Result is the outcome of a calculation.
type Result struct {
	Pi         *big.Float
	Algorithm  Algorithm
	Precision  int
	Iterations int
	Threads    int
	Workers    int
	Bits       uint
	Duration   time.Duration
}

// Tag is a shortcut for r.Algorithm.Tag().
func (r *Result) Tag() string { return r.Algorithm.Tag() }

// Calculator computes π with one algorithm.
type Calculator interface {
	// Calculate computes π to precision decimals. Progress is sent
	// asynchronously to progressChan when it is not nil.
	Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, precision int, opts Options) (*Result, error)
	// Name returns the algorithm tag.
	Name() string
	// Algorithm returns the algorithm description.
	Algorithm() Algorithm
}

// coreCalculator is a bare summation without instrumentation.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter ProgressReporter, plan Plan, ratios *partition.RatioTable) (*big.Float, error)
	Algorithm() Algorithm
}

// seriesCalculator sums a series family with the parallel reduction.
type seriesCalculator struct {
	alg Algorithm
}

func (c *seriesCalculator) Algorithm() Algorithm { return c.alg }

func (c *seriesCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, plan Plan, ratios *partition.RatioTable) (*big.Float, error) {
	fam, err := series.New(c.alg.Series, plan.Numeric, plan.Iterations)
	if err != nil {
		return nil, err
	}
	sum, err := parallel.Reduce(ctx, parallel.Job{
		Iterations: plan.Iterations,
		Threads:    plan.Threads,
		Scheme:     c.alg.Scheme,
		Family:     fam,
		Precision:  plan.Numeric,
		Ratios:     ratios,
		Progress:   parallel.ProgressFunc(reporter),
	})
	if err != nil {
		return nil, err
	}
	return fam.Finalize(sum), nil
}

// PiCalculator decorates a core calculator with validation, ratio loading,
// tracing, metrics and logging.
type PiCalculator struct {
	core coreCalculator
}

// NewCalculator wraps core with validation, tracing, metrics and logging.
//
// Parameters:
//   - core: The bare summation. It panics when core is nil.
//
// Returns:
//   - Calculator: The decorated calculator.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("pi: the core calculator cannot be nil")
	}
	return &PiCalculator{core: core}
}

// NewAlgorithmCalculator returns the calculator of any algorithm, catalogued
// or custom.
func NewAlgorithmCalculator(alg Algorithm) Calculator {
	return NewCalculator(&seriesCalculator{alg: alg})
}

// Name returns the algorithm tag.
func (c *PiCalculator) Name() string { return c.core.Algorithm().Tag() }

// Algorithm returns the wrapped algorithm.
func (c *PiCalculator) Algorithm() Algorithm { return c.core.Algorithm() }

// Calculate adapts progressChan to an observer and runs the calculation.
func (c *PiCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, precision int, opts Options) (*Result, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return c.CalculateWithObservers(ctx, subject, calcIndex, precision, opts)
}

// CalculateWithObservers runs the calculation, notifying every observer of
// subject. A nil subject disables progress reporting.
//
// Validation errors are returned unwrapped; failures during the summation
// are wrapped in apperrors.CalculationError unless they come from the
// context.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - subject: The observers to notify, or nil.
//   - calcIndex: The calculator index forwarded with progress updates.
//   - precision: The number of decimals requested.
//   - opts: The thread count and the ratio table location.
//
// Returns:
//   - *Result: The approximation of π with its plan and duration.
//   - error: An error if validation fails or the calculation is interrupted.
func (c *PiCalculator) CalculateWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, precision int, opts Options) (result *Result, err error) {
	alg := c.core.Algorithm()
	tag := alg.Tag()

	plan, err := Select(alg, precision, opts.Threads)
	if err != nil {
		return nil, err
	}
	ratios, err := resolveRatios(alg, opts)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("picalc").Start(ctx, "Calculate")
	span.SetAttributes(
		attribute.String("algorithm", tag),
		attribute.Int("precision", precision),
		attribute.Int("iterations", plan.Iterations),
		attribute.Int("threads", plan.Threads),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			termsTotal.WithLabelValues(tag).Add(float64(plan.Iterations))
		}
		calculationsTotal.WithLabelValues(tag, status).Inc()
		calculationDuration.WithLabelValues(tag).Observe(duration.Seconds())

		log.Debug().
			Str("algo", tag).
			Int("precision", precision).
			Int("iterations", plan.Iterations).
			Int("workers", plan.Workers).
			Dur("duration", duration).
			Str("status", status).
			Msg("calculation completed")
	}()

	reporter := ProgressReporter(func(float64) {})
	if subject != nil {
		reporter = subject.AsProgressReporter(calcIndex)
	}

	value, err := c.core.CalculateCore(ctx, reporter, plan, ratios)
	if err != nil {
		if !apperrors.IsContextError(err) {
			err = apperrors.CalculationError{Cause: err}
		}
		return nil, err
	}
	reporter(1.0)

	return &Result{
		Pi:         value,
		Algorithm:  alg,
		Precision:  precision,
		Iterations: plan.Iterations,
		Threads:    plan.Threads,
		Workers:    plan.Workers,
		Bits:       plan.Numeric.Prec,
		Duration:   time.Since(start),
	}, nil
}

// resolveRatios returns the ratio table when the algorithm needs one.
func resolveRatios(alg Algorithm, opts Options) (*partition.RatioTable, error) {
	if alg.Scheme != partition.Cheater {
		return nil, nil
	}
	if opts.Ratios != nil {
		return opts.Ratios, nil
	}
	path := opts.RatiosPath
	if path == "" {
		path = DefaultRatiosPath
	}
	return partition.LoadRatioTable(path)
}
