package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests can create as many as they want.
type Metrics struct {
	registry   *prometheus.Registry
	authEvents *prometheus.CounterVec
	postWrites *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		authEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jotter_auth_attempts_total",
			Help: "Register and login attempts by outcome",
		}, []string{"op", "outcome"}),
		postWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jotter_post_writes_total",
			Help: "Posts created, updated or deleted",
		}, []string{"op"}),
	}
}

func (m *Metrics) AuthOutcome(op, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) PostWritten(op string) {
	if m == nil {
		return
	}
	m.postWrites.WithLabelValues(op).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
