package pi

// ProgressReportThreshold is the minimum progress change forwarded to
// observers that throttle on their own.
const ProgressReportThreshold = 0.01

// ProgressUpdate is one progress notification of a calculator.
type ProgressUpdate struct {
	// CalculatorIndex identifies the calculator within a comparison run.
	CalculatorIndex int
	// Value is the completed fraction, in [0, 1].
	Value float64
}

// ProgressReporter receives the completed fraction of a run.
type ProgressReporter func(progress float64)
