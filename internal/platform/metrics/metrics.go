package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the timeline navigator.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	seekClicksTotal       prometheus.Counter
	clipRequestsTotal     prometheus.Counter
	clipErrorsTotal       prometheus.Counter
	clipSupersededTotal   prometheus.Counter
	continuationsTotal    prometheus.Counter
	segmentRefreshesTotal prometheus.Counter
	activeSessions        prometheus.Gauge
	errorsTotal           prometheus.Counter
}

// New creates and registers Prometheus metrics for the navigator.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_http_requests_total",
		Help: "Total number of HTTP requests received",
	})
	seekClicksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_seek_clicks_total",
		Help: "Total number of timeline clicks registered",
	})
	clipRequestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_clip_requests_total",
		Help: "Total number of clip requests issued to the archive",
	})
	clipErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_clip_errors_total",
		Help: "Total number of failed clip requests (cancellations excluded)",
	})
	clipSupersededTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_clip_superseded_total",
		Help: "Total number of clip results discarded because a newer seek replaced them",
	})
	continuationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_continuations_total",
		Help: "Total number of automatic next-clip continuations",
	})
	segmentRefreshesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_segment_refreshes_total",
		Help: "Total number of periodic segment list refreshes",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timeline_active_sessions",
		Help: "Number of open dashboard sessions",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_http_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		seekClicksTotal,
		clipRequestsTotal,
		clipErrorsTotal,
		clipSupersededTotal,
		continuationsTotal,
		segmentRefreshesTotal,
		activeSessions,
		errorsTotal,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		seekClicksTotal:       seekClicksTotal,
		clipRequestsTotal:     clipRequestsTotal,
		clipErrorsTotal:       clipErrorsTotal,
		clipSupersededTotal:   clipSupersededTotal,
		continuationsTotal:    continuationsTotal,
		segmentRefreshesTotal: segmentRefreshesTotal,
		activeSessions:        activeSessions,
		errorsTotal:           errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncSeekClicks increments the timeline click counter.
func (m *Metrics) IncSeekClicks() {
	m.seekClicksTotal.Inc()
}

// IncClipRequests increments the clip request counter.
func (m *Metrics) IncClipRequests() {
	m.clipRequestsTotal.Inc()
}

// IncClipErrors increments the failed clip request counter.
func (m *Metrics) IncClipErrors() {
	m.clipErrorsTotal.Inc()
}

// IncClipSuperseded increments the discarded stale result counter.
func (m *Metrics) IncClipSuperseded() {
	m.clipSupersededTotal.Inc()
}

// IncContinuations increments the auto-continuation counter.
func (m *Metrics) IncContinuations() {
	m.continuationsTotal.Inc()
}

// IncSegmentRefreshes increments the segment refresh counter.
func (m *Metrics) IncSegmentRefreshes() {
	m.segmentRefreshesTotal.Inc()
}

// SetActiveSessions sets the open sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncErrors increments the HTTP errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. open sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
