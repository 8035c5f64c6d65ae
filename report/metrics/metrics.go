// Package metrics exposes cache statistics as Prometheus metrics.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/cachesim/cache"
)

const namespace = "cachesim"

// Collector reads a model's statistics at collection time.
type Collector struct {
	model cache.Model

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	setHits   *prometheus.Desc
	setMisses *prometheus.Desc
}

// NewCollector creates a Collector for model. The model must not be accessed
// concurrently with collection.
func NewCollector(model cache.Model) *Collector {
	return &Collector{
		model: model,
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "hits_total"),
			"Total number of cache hits.", nil, nil),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "misses_total"),
			"Total number of cache misses.", nil, nil),
		evictions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "evictions_total"),
			"Total number of blocks evicted.", nil, nil),
		setHits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "set", "hits_total"),
			"Number of cache hits per set.", []string{"set"}, nil),
		setMisses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "set", "misses_total"),
			"Number of cache misses per set.", []string{"set"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.setHits
	ch <- c.setMisses
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.model.Stats()

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions))

	for i := range stats.SetHits {
		set := strconv.Itoa(i)
		ch <- prometheus.MustNewConstMetric(c.setHits, prometheus.CounterValue,
			float64(stats.SetHits[i]), set)
		ch <- prometheus.MustNewConstMetric(c.setMisses, prometheus.CounterValue,
			float64(stats.SetMisses[i]), set)
	}
}

// WriteTextfile writes the model's metrics to path in the text exposition
// format read by the node exporter's textfile collector.
func WriteTextfile(path string, model cache.Model) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(model)); err != nil {
		return fmt.Errorf("failed to register cache metrics: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}
