// Package metrics exposes classifier counters in the Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ironfilter.ai/internal/session"
)

const namespace = "ironfilter"

type Collector struct {
	reg *prometheus.Registry

	events    *prometheus.CounterVec
	decisions *prometheus.CounterVec
	queries   *prometheus.CounterVec
	sessions  prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Host events received, by kind and result.",
		}, []string{"kind", "result"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Classification decisions, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Host queries answered, by query and result code.",
		}, []string{"query", "code"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Connected host sessions.",
		}),
	}
	c.reg.MustRegister(
		c.events,
		c.decisions,
		c.queries,
		c.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// WriteDecision implements session.DecisionSink.
func (c *Collector) WriteDecision(d session.Decision) error {
	c.decisions.WithLabelValues(d.Kind, d.Outcome).Inc()
	return nil
}

// ObserveEvent counts one event with the error session.Apply returned.
func (c *Collector) ObserveEvent(kind string, err error) {
	result := "applied"
	switch {
	case errors.Is(err, session.ErrSkipped):
		result = "skipped"
	case err != nil:
		result = "error"
	}
	c.events.WithLabelValues(kind, result).Inc()
}

// ObserveQuery counts one answered query; code is empty on success.
func (c *Collector) ObserveQuery(query, code string) {
	if code == "" {
		code = "OK"
	}
	c.queries.WithLabelValues(query, code).Inc()
}

func (c *Collector) SessionOpened() { c.sessions.Inc() }
func (c *Collector) SessionClosed() { c.sessions.Dec() }
