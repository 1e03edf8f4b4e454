package measure

import "time"

// Measure stores one Metric per step, and the Metric of whole executions apart from them.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	// Total is the metric of whole executions. It is never returned by AllMetrics.
	Total() Metric
}

// Metric accumulates the outcomes of one step over one or more executions.
type Metric interface {
	AddDuration(elapsed time.Duration, err error)
	AVGDuration() time.Duration
	Runs() int64
	Failures() int64
	LastError() error
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
}
