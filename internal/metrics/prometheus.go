package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the DT service
type Metrics struct {
	// UDP dispatcher metrics
	DatagramsReceived *prometheus.CounterVec // by language
	RepliesSent       *prometheus.CounterVec // by language
	DatagramsDropped  *prometheus.CounterVec // by reject reason

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		DatagramsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dt_datagrams_received_total",
			Help: "Total number of UDP datagrams received, by language socket",
		}, []string{"language"}),
		RepliesSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dt_replies_sent_total",
			Help: "Total number of DT-Responses sent, by language socket",
		}, []string{"language"}),
		DatagramsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dt_datagrams_dropped_total",
			Help: "Total number of datagrams dropped without a reply, by reject reason",
		}, []string{"reason"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dt_http_requests_total",
			Help: "Total number of HTTP API requests",
		}, []string{"method", "endpoint", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dt_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dt_http_errors_total",
			Help: "Total number of HTTP API error responses",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordReceived increments the received counter for a language socket.
func (m *Metrics) RecordReceived(language string) {
	m.DatagramsReceived.WithLabelValues(language).Inc()
}

// RecordReply increments the reply counter for a language socket.
func (m *Metrics) RecordReply(language string) {
	m.RepliesSent.WithLabelValues(language).Inc()
}

// RecordDrop increments the drop counter for a reject reason.
func (m *Metrics) RecordDrop(reason string) {
	m.DatagramsDropped.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an HTTP API request with its duration.
func (m *Metrics) RecordHTTPRequest(method, endpoint, status string, duration float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordHTTPError records an HTTP API error response.
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
