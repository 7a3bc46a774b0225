package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// registry is the global Prometheus registry for the server. Metrics are
// optional: until InitRegistry is called, NewMetrics returns a no-op
// implementation with zero overhead, matching the teacher's pattern of
// letting components run with or without metrics collection enabled.
var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry. Safe to call
// multiple times; only the first call takes effect.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Metrics observes dispatcher and connection activity. Every opcode
// dispatched through internal/xrootd reports here; RecordDHHandshake has
// no caller in internal/gsi. The noopMetrics value returned by NewMetrics
// when disabled makes every call a no-op.
type Metrics interface {
	// RecordRequest records a completed request: its opcode, how long the
	// dispatcher spent on it, and whether it failed.
	RecordRequest(opcode string, duration time.Duration, err error)

	// RecordRequestStart/End track in-flight requests per opcode, used to
	// detect connections stuck inside a single slow handler.
	RecordRequestStart(opcode string)
	RecordRequestEnd(opcode string)

	// RecordBytesTransferred records payload bytes moved by read/readv/write.
	RecordBytesTransferred(direction string, bytes int64)

	// SetActiveConnections reports the live connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted/Closed track connection lifecycle totals.
	RecordConnectionAccepted()
	RecordConnectionClosed()

	// RecordDHHandshake records a completed DH key-agreement attempt.
	RecordDHHandshake(outcome string, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, time.Duration, error)  {}
func (noopMetrics) RecordRequestStart(string)                   {}
func (noopMetrics) RecordRequestEnd(string)                     {}
func (noopMetrics) RecordBytesTransferred(string, int64)        {}
func (noopMetrics) SetActiveConnections(int32)                  {}
func (noopMetrics) RecordConnectionAccepted()                   {}
func (noopMetrics) RecordConnectionClosed()                     {}
func (noopMetrics) RecordDHHandshake(string, time.Duration)     {}

// NewNoopMetrics returns a Metrics implementation that discards everything.
func NewNoopMetrics() Metrics { return noopMetrics{} }
