package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// HTTPMetrics captures request-level health signals for the web app.
type HTTPMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authOutcomes    *prometheus.CounterVec
	guardRedirects  *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *HTTPMetrics
)

// HTTP returns the singleton HTTP metrics registry.
func HTTP() *HTTPMetrics {
	return HTTPWithConfig(Config{})
}

// HTTPWithConfig returns the singleton HTTP metrics registry using config labels.
func HTTPWithConfig(cfg Config) *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return httpMetrics
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "startupcrm"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "startupcrm_http_requests_total",
		Help:        "HTTP requests by route, method and status.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "startupcrm_http_request_duration_seconds",
		Help:        "HTTP request latency by route and method.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"route", "method"})
	authOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "startupcrm_auth_resolutions_total",
		Help:        "Session resolution outcomes per request.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	guardRedirects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "startupcrm_guard_redirects_total",
		Help:        "Route guard redirects by target.",
		ConstLabels: constLabels,
	}, []string{"target"})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "startupcrm_active_sessions",
		Help:        "Sessions seen within the activity window.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		requests,
		requestDuration,
		authOutcomes,
		guardRedirects,
		activeSessions,
	)

	return &HTTPMetrics{
		requests:        requests,
		requestDuration: requestDuration,
		authOutcomes:    authOutcomes,
		guardRedirects:  guardRedirects,
		activeSessions:  activeSessions,
	}
}

// ObserveRequest records one finished HTTP request.
func (m *HTTPMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	if m.requests != nil {
		m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if m.requestDuration != nil {
		m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
	}
}

// Resolution outcomes are low-cardinality by construction.
const (
	AuthOutcomeAuthenticated   = "authenticated"
	AuthOutcomeUnauthenticated = "unauthenticated"
	AuthOutcomeStoreError      = "store_error"
)

// IncAuthResolution counts a session resolution outcome.
func (m *HTTPMetrics) IncAuthResolution(outcome string) {
	if m == nil || m.authOutcomes == nil {
		return
	}
	m.authOutcomes.WithLabelValues(outcome).Inc()
}

// IncGuardRedirect counts a route guard redirect by target path.
func (m *HTTPMetrics) IncGuardRedirect(target string) {
	if m == nil || m.guardRedirects == nil {
		return
	}
	m.guardRedirects.WithLabelValues(target).Inc()
}

// SetActiveSessions sets the active session gauge.
func (m *HTTPMetrics) SetActiveSessions(count int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(count))
}
