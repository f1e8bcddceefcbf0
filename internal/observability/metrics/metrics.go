package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsoleMetrics exposes counters/histograms for console pages and backend calls.
type ConsoleMetrics struct {
	pageRequests   *prometheus.CounterVec
	pageLatency    *prometheus.HistogramVec
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	authEvents     *prometheus.CounterVec
}

// NewConsoleMetrics registers the console collectors on reg, or on the default registerer when reg is nil.
func NewConsoleMetrics(reg prometheus.Registerer) *ConsoleMetrics {
	m := &ConsoleMetrics{
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty_console",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total console HTTP requests",
		}, []string{"route", "method", "status"}),
		pageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loyalty_console",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of console HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty_console",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total calls to the loyalty backend",
		}, []string{"endpoint", "status"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loyalty_console",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Latency of calls to the loyalty backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loyalty_console",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Sign-in, sign-up, verification and logout outcomes",
		}, []string{"event", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pageRequests, m.pageLatency, m.backendCalls, m.backendLatency, m.authEvents)
	return m
}

// ObserveRequest records one served page by route pattern.
func (m *ConsoleMetrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pageRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.pageLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveBackend records one backend round trip. Status 0 means the call never got a response.
func (m *ConsoleMetrics) ObserveBackend(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	m.backendCalls.WithLabelValues(endpoint, label).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveAuth counts the outcome of an auth event such as "login".
func (m *ConsoleMetrics) ObserveAuth(event string, ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}
