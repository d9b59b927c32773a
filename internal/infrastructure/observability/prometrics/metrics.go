package prometrics

import (
	"fmt"

	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry owns the Prometheus vectors behind observability.Metrics.
type Registry struct {
	counters   map[observability.MetricKey]*prometheus.CounterVec
	histograms map[observability.MetricKey]*prometheus.HistogramVec
}

var _ observability.Metrics = (*Registry)(nil)

// New creates and registers one vector per MetricSpec on reg.
func New(reg prometheus.Registerer, namespace string, counters, histograms []observability.MetricSpec) (*Registry, error) {
	r := &Registry{
		counters:   make(map[observability.MetricKey]*prometheus.CounterVec, len(counters)),
		histograms: make(map[observability.MetricKey]*prometheus.HistogramVec, len(histograms)),
	}
	for _, s := range counters {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: string(s.Key), Help: s.Help,
		}, s.Labels)
		if err := reg.Register(cv); err != nil {
			return nil, fmt.Errorf("register counter %s: %w", s.Key, err)
		}
		r.counters[s.Key] = cv
	}
	for _, s := range histograms {
		hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: string(s.Key), Help: s.Help, Buckets: prometheus.DefBuckets,
		}, s.Labels)
		if err := reg.Register(hv); err != nil {
			return nil, fmt.Errorf("register histogram %s: %w", s.Key, err)
		}
		r.histograms[s.Key] = hv
	}
	return r, nil
}

func (r *Registry) Counter(name observability.MetricKey) observability.Counter {
	if v, ok := r.counters[name]; ok {
		return &counter{v: v}
	}
	return observability.NopCounter()
}

func (r *Registry) Histogram(name observability.MetricKey) observability.Histogram {
	if v, ok := r.histograms[name]; ok {
		return &histogram{v: v}
	}
	return observability.NopHistogram()
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	m, err := c.v.GetMetricWith(labelMap(labels))
	if err != nil {
		// label mismatch is a programming error; never panic on the request path
		return
	}
	m.Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	m, err := h.v.GetMetricWith(labelMap(labels))
	if err != nil {
		return
	}
	m.Observe(v)
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}
