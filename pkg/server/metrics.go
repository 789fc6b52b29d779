package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	activeSessions  prometheus.Gauge
	pendingSessions prometheus.Gauge
	sessionsTotal   prometheus.Counter
	sessionsExpired prometheus.Counter
	eventsTotal     *prometheus.CounterVec
	eventDuration   prometheus.Histogram
	eventsDropped   prometheus.Counter
	passesTotal     *prometheus.CounterVec
	passDuration    prometheus.Histogram
	opsSent         prometheus.Counter
	bytesSent       prometheus.Counter
	wsErrors        *prometheus.CounterVec
}

// NewMetrics registers the server metrics with reg under namespace.
//
// Metrics collected:
//   - <ns>_active_sessions: Gauge of connected sessions
//   - <ns>_pending_sessions: Gauge of rendered sessions awaiting their WebSocket
//   - <ns>_sessions_total: Counter of sessions created
//   - <ns>_sessions_expired_total: Counter of pending sessions never connected
//   - <ns>_events_total: Counter of events by type and status
//   - <ns>_event_duration_seconds: Histogram of handler duration
//   - <ns>_events_dropped_total: Counter of events dropped on a full queue
//   - <ns>_passes_total: Counter of update passes by status
//   - <ns>_pass_duration_seconds: Histogram of update pass duration
//   - <ns>_ops_sent_total: Counter of ops sent to clients
//   - <ns>_bytes_sent_total: Counter of message bytes sent to clients
//   - <ns>_websocket_errors_total: Counter of WebSocket errors by type
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected sessions",
		}),
		pendingSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_sessions",
			Help:      "Number of rendered sessions awaiting their WebSocket",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of sessions created",
		}),
		sessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of sessions discarded before their WebSocket connected",
		}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of events processed",
		}, []string{"type", "status"}),
		eventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Event handler duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped because the queue was full",
		}),
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Total number of update passes",
		}, []string{"status"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Update pass duration in seconds, including diffing",
			Buckets:   prometheus.DefBuckets,
		}),
		opsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_sent_total",
			Help:      "Total number of ops sent to clients",
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total number of message bytes sent to clients",
		}),
		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "Total WebSocket errors by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) sessionCreated() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
	m.pendingSessions.Inc()
}

func (m *Metrics) sessionConnected() {
	if m == nil {
		return
	}
	m.pendingSessions.Dec()
	m.activeSessions.Inc()
}

func (m *Metrics) sessionExpired() {
	if m == nil {
		return
	}
	m.pendingSessions.Dec()
	m.sessionsExpired.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) event(eventType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(eventType, status).Inc()
	m.eventDuration.Observe(d.Seconds())
}

func (m *Metrics) eventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

func (m *Metrics) pass(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.passesTotal.WithLabelValues(status).Inc()
	m.passDuration.Observe(d.Seconds())
}

func (m *Metrics) sent(ops, bytes int) {
	if m == nil {
		return
	}
	m.opsSent.Add(float64(ops))
	m.bytesSent.Add(float64(bytes))
}

func (m *Metrics) wsError(kind string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(kind).Inc()
}
