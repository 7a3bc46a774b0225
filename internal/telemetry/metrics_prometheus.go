package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusMetrics is the Prometheus-backed Metrics implementation.
type prometheusMetrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	requestsInFlight     *prometheus.GaugeVec
	bytesTransferred     *prometheus.CounterVec
	activeConnections    prometheus.Gauge
	connectionsAccepted  prometheus.Counter
	connectionsClosed    prometheus.Counter
	dhHandshakesTotal    *prometheus.CounterVec
	dhHandshakeDuration  prometheus.Histogram
}

// NewMetrics creates a Prometheus-backed Metrics instance, or a no-op
// instance if InitRegistry has not been called.
func NewMetrics() Metrics {
	if !IsEnabled() {
		return NewNoopMetrics()
	}

	reg := GetRegistry()

	return &prometheusMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrootd_requests_total",
				Help: "Total number of xrootd requests by opcode and outcome",
			},
			[]string{"opcode", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xrootd_request_duration_seconds",
				Help:    "Duration of xrootd request handling by opcode",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"opcode"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xrootd_requests_in_flight",
				Help: "Number of xrootd requests currently being processed",
			},
			[]string{"opcode"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrootd_bytes_transferred_total",
				Help: "Total bytes transferred by direction (read/write)",
			},
			[]string{"direction"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "xrootd_active_connections",
				Help: "Number of currently active client connections",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "xrootd_connections_accepted_total",
				Help: "Total number of accepted connections",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "xrootd_connections_closed_total",
				Help: "Total number of closed connections",
			},
		),
		dhHandshakesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrootd_gsi_dh_handshakes_total",
				Help: "Total DH handshakes by outcome",
			},
			[]string{"outcome"},
		),
		dhHandshakeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xrootd_gsi_dh_handshake_duration_seconds",
				Help:    "Duration of DH key agreement finalization",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *prometheusMetrics) RecordRequest(opcode string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.requestsTotal.WithLabelValues(opcode, status).Inc()
	m.requestDuration.WithLabelValues(opcode).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordRequestStart(opcode string) {
	m.requestsInFlight.WithLabelValues(opcode).Inc()
}

func (m *prometheusMetrics) RecordRequestEnd(opcode string) {
	m.requestsInFlight.WithLabelValues(opcode).Dec()
}

func (m *prometheusMetrics) RecordBytesTransferred(direction string, bytes int64) {
	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}

func (m *prometheusMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *prometheusMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
	m.activeConnections.Inc()
}

func (m *prometheusMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
	m.activeConnections.Dec()
}

func (m *prometheusMetrics) RecordDHHandshake(outcome string, duration time.Duration) {
	m.dhHandshakesTotal.WithLabelValues(outcome).Inc()
	m.dhHandshakeDuration.Observe(duration.Seconds())
}
