package mockbank

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the counters the mock backend exposes on /metrics.
type Collector struct {
	loginSuccess prometheus.Counter
	loginFailure prometheus.Counter
	unauthorized prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockbank_login_success_total",
			Help: "Successful login attempts",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockbank_login_failure_total",
			Help: "Rejected login attempts",
		}),
		unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mockbank_unauthorized_total",
			Help: "Requests rejected by the bearer check",
		}),
		gatherer: reg,
	}
	reg.MustRegister(c.loginSuccess, c.loginFailure, c.unauthorized)
	return c
}

func (c *Collector) RecordLoginSuccess() { c.loginSuccess.Inc() }
func (c *Collector) RecordLoginFailure() { c.loginFailure.Inc() }
func (c *Collector) RecordUnauthorized() { c.unauthorized.Inc() }

// Handler returns the /metrics endpoint handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
