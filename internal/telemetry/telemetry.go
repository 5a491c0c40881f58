// Package telemetry holds the order lifecycle log and metrics. Both are
// explicitly constructed and injected into the order service rather than
// living as package globals, so tests and the CLI control their lifecycle.
package telemetry

type Telemetry struct {
	Log     *Log
	Metrics *Metrics
}

// New builds a telemetry bundle. logCapacity bounds the in-memory event log;
// values <= 0 fall back to the default of 1000 entries.
func New(logCapacity int) *Telemetry {
	return &Telemetry{
		Log:     NewLog(logCapacity),
		Metrics: NewMetrics(),
	}
}
