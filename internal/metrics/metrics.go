// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts what a harvest run does and writes the counters
// in Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pubmed_affiliations"

// Collector holds the counters for one run. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	idsCollected     prometheus.Counter
	articlesFetched  prometheus.Counter
	articlesAccepted prometheus.Counter
	articlesRejected *prometheus.CounterVec
	authors          prometheus.Gauge
	lastRunSeconds   prometheus.Gauge
	lastRunSuccess   prometheus.Gauge
}

// New registers every metric on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "E-utilities request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		idsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ids_collected_total",
			Help:      "Article ids returned by esearch pagination.",
		}),
		articlesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_fetched_total",
			Help:      "Article records returned by efetch.",
		}),
		articlesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_accepted_total",
			Help:      "Articles whose title matched a keyword.",
		}),
		articlesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_rejected_total",
			Help:      "Articles excluded from the aggregate, by reason.",
		}, []string{"reason"}),
		authors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "authors",
			Help:      "Distinct authors in the aggregate.",
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run finished without error, else 0.",
		}),
	}
	c.registry.MustRegister(
		c.requests, c.idsCollected, c.articlesFetched, c.articlesAccepted,
		c.articlesRejected, c.authors, c.lastRunSeconds, c.lastRunSuccess,
	)
	return c
}

// ObserveAttempt counts one request attempt.
func (c *Collector) ObserveAttempt(endpoint string, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.requests.WithLabelValues(endpoint, outcome).Inc()
}

// AddIDs counts ids collected by the search stage.
func (c *Collector) AddIDs(n int) {
	if c == nil {
		return
	}
	c.idsCollected.Add(float64(n))
}

// AddFetched counts records returned by the fetch stage.
func (c *Collector) AddFetched(n int) {
	if c == nil {
		return
	}
	c.articlesFetched.Add(float64(n))
}

// Accepted counts one article kept by validation.
func (c *Collector) Accepted() {
	if c == nil {
		return
	}
	c.articlesAccepted.Inc()
}

// Rejected counts one article dropped by validation.
func (c *Collector) Rejected(reason string) {
	if c == nil {
		return
	}
	c.articlesRejected.WithLabelValues(reason).Inc()
}

// SetAuthors records the aggregate size.
func (c *Collector) SetAuthors(n int) {
	if c == nil {
		return
	}
	c.authors.Set(float64(n))
}

// Finish records the run duration and whether it succeeded.
func (c *Collector) Finish(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.lastRunSeconds.Set(d.Seconds())
	if err != nil {
		c.lastRunSuccess.Set(0)
		return
	}
	c.lastRunSuccess.Set(1)
}

// Gatherer exposes the registry.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes every metric to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
