package pi

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ChannelObserver forwards updates to a channel without ever blocking the
// workers: updates are dropped while the channel is full.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver returns an observer writing to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver.
func (o *ChannelObserver) Update(calcIndex int, progress float64) {
	if o.channel == nil {
		return
	}
	progress = min(progress, 1.0)
	select {
	case o.channel <- ProgressUpdate{CalculatorIndex: calcIndex, Value: progress}:
	default:
	}
}

// LoggingObserver logs progress at debug level, at most once per threshold
// step per calculator.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64
	lastLog   map[int]float64
	mu        sync.Mutex
}

// NewLoggingObserver returns a logging observer; a non-positive threshold
// defaults to 10%.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{
		logger:    logger,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(calcIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	last, seen := o.lastLog[calcIndex]
	if seen && progress < 1.0 && progress-last < o.threshold {
		return
	}
	o.logger.Debug().
		Int("calculator", calcIndex).
		Float64("progress", progress).
		Msg("summation progress")
	o.lastLog[calcIndex] = progress
}

var progressGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pi_calculation_progress",
		Help: "Completed fraction of running π calculations (0.0 to 1.0)",
	},
	[]string{"calculator_index"},
)

// MetricsObserver exports progress as a Prometheus gauge.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
}

// NewMetricsObserver returns an observer backed by the shared gauge.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{gauge: progressGauge}
}

// Update implements ProgressObserver.
func (o *MetricsObserver) Update(calcIndex int, progress float64) {
	o.gauge.WithLabelValues(strconv.Itoa(calcIndex)).Set(progress)
}

// ResetMetrics clears every series of the gauge.
func (o *MetricsObserver) ResetMetrics() {
	o.gauge.Reset()
}

// NoOpObserver discards updates.
type NoOpObserver struct{}

// NewNoOpObserver returns a NoOpObserver.
func NewNoOpObserver() *NoOpObserver { return &NoOpObserver{} }

// Update implements ProgressObserver.
func (o *NoOpObserver) Update(int, float64) {}
