// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package contactcache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/cache"
)

const metricsNamespace = "contactcache"

var (
	recordsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "records"),
		"The number of contacts held in the cache.",
		nil, nil,
	)
	listLengthDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "list_length"),
		"The number of contacts in each list.",
		[]string{"list"}, nil,
	)
	populatedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "list_populated"),
		"Whether each list has completed its first fetch.",
		[]string{"list"}, nil,
	)
	queuedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "queued_operations"),
		"The number of operations waiting for a backend request.",
		nil, nil,
	)
	observersDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "observers"),
		"The number of registered list observers.",
		nil, nil,
	)
	requestsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "requests_total"),
		"The number of backend requests started.",
		[]string{"role"}, nil,
	)
	failuresDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "request_failures_total"),
		"The number of backend requests that failed.",
		[]string{"role"}, nil,
	)
	evictedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, "", "evicted_total"),
		"The number of contacts evicted after leaving every list.",
		nil, nil,
	)
)

// Collector is a prometheus.Collector that reports the state of a cache.
type Collector struct {
	cache *cache.Cache
}

// NewMetricsCollector returns a new Collector for c.
func NewMetricsCollector(c *cache.Cache) *Collector {
	return &Collector{cache: c}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
	ch <- listLengthDesc
	ch <- populatedDesc
	ch <- queuedDesc
	ch <- observersDesc
	ch <- requestsDesc
	ch <- failuresDesc
	ch <- evictedDesc
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(stats.Records))
	ch <- prometheus.MustNewConstMetric(queuedDesc, prometheus.GaugeValue, float64(stats.QueuedOps))
	ch <- prometheus.MustNewConstMetric(observersDesc, prometheus.GaugeValue, float64(stats.Observers))
	ch <- prometheus.MustNewConstMetric(evictedDesc, prometheus.CounterValue, float64(stats.Evicted))
	for filter, n := range stats.ListLengths {
		ch <- prometheus.MustNewConstMetric(listLengthDesc, prometheus.GaugeValue, float64(n), filter.String())
		populated := 0.0
		if stats.Populated[filter] {
			populated = 1
		}
		ch <- prometheus.MustNewConstMetric(populatedDesc, prometheus.GaugeValue, populated, filter.String())
	}
	for role, n := range stats.RequestsStarted {
		ch <- prometheus.MustNewConstMetric(requestsDesc, prometheus.CounterValue, float64(n), role.String())
	}
	for role, n := range stats.RequestsFailed {
		ch <- prometheus.MustNewConstMetric(failuresDesc, prometheus.CounterValue, float64(n), role.String())
	}
}
