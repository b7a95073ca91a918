package cli

import (
	"fmt"
	"time"
)

const maxETA = 24 * time.Hour

// ProgressWithETA adds a smoothed completion rate to ProgressState.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	// progressRate is the exponentially smoothed progress per second.
	progressRate float64
}

// NewProgressWithETA tracks numCalculators calculators from now.
func NewProgressWithETA(numCalculators int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numCalculators),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records an update and returns the average progress and the
// estimated remaining time (0 while the estimate is not meaningful yet).
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	progress := p.CalculateAverage()

	now := time.Now()
	elapsed := now.Sub(p.startTime)
	if elapsed < 100*time.Millisecond || progress <= 0.001 {
		p.lastUpdate, p.lastProgress = now, progress
		return progress, 0
	}

	if since := now.Sub(p.lastUpdate).Seconds(); since > 0.05 {
		if delta := progress - p.lastProgress; delta > 0 {
			if p.progressRate > 0 {
				p.progressRate = 0.7*p.progressRate + 0.3*(delta/since)
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate, p.lastProgress = now, progress
	}
	return progress, p.GetETA()
}

// GetETA estimates the remaining time from the smoothed rate, capped at a
// day.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.CalculateAverage()
	if p.progressRate <= 0 || progress >= 1.0 {
		return 0
	}
	eta := time.Duration((1.0 - progress) / p.progressRate * float64(time.Second))
	return min(eta, maxETA)
}

// FormatETA renders an ETA as "< 1s", "45s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h, m := int(eta.Hours()), int(eta.Minutes())%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
