// Package metrics holds the Prometheus collectors describing upstream traffic
// and session outcomes.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session resolution outcomes.
const (
	SessionAnonymous     = "anonymous"
	SessionAuthenticated = "authenticated"
	SessionRefreshed     = "refreshed"
	SessionCleared       = "cleared"
)

// Metrics is a private registry so several servers (and tests) can coexist in
// one process.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	refreshes        *prometheus.CounterVec
	sessions         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bff",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the upstream API by endpoint and response status.",
		}, []string{"endpoint", "status"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bff",
			Name:      "token_refreshes_total",
			Help:      "Access credential refresh attempts by result.",
		}, []string{"result"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bff",
			Name:      "session_resolutions_total",
			Help:      "Per-request session resolutions by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.upstreamRequests, m.refreshes, m.sessions)
	return m
}

// UpstreamRequest records one upstream call. A status of 0 means the request
// never got a response.
func (m *Metrics) UpstreamRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(endpoint, label).Inc()
}

func (m *Metrics) Refresh(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) Session(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
