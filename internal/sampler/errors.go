package sampler

import "fmt"

// Metric names reported in MetricError.
const (
	MetricCPU       = "cpu"
	MetricMemory    = "memory"
	MetricDisk      = "disk"
	MetricNetwork   = "network"
	MetricProcesses = "processes"
)

// MetricError is a failed query for a single metric. The sampler skips that
// metric for the current tick and keeps running.
type MetricError struct {
	Metric string
	Err    error
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("sample %s: %v", e.Metric, e.Err)
}

func (e *MetricError) Unwrap() error { return e.Err }
