// Package prometheus provides Prometheus-compatible metrics collection
// behind the observability.Metrics port.
//
// Metric vectors are created lazily on first use in a private registry.
// Dotted metric names become snake case under the configured namespace,
// e.g. "stage.duration" is exported as "firds_stage_duration". When a
// Pushgateway URL is configured the registry is pushed on Flush, which
// suits short-lived batch jobs that are never scraped.
package prometheus

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"firds/shared/config"
	"firds/shared/domain/observability"
)

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// registry holds the vectors shared by every scoped Metrics instance
type registry struct {
	mu         sync.Mutex
	reg        *prometheus.Registry
	namespace  string
	pushURL    string
	job        string
	labels     map[string][]string
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// Metrics implements observability.Metrics
type Metrics struct {
	shared      *registry
	defaultTags map[string]string
}

// New creates metrics from configuration
func New(cfg *config.Config) *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), cfg.Observability.MetricsNamespace,
		cfg.Observability.PushgatewayURL, cfg.ServiceName)
}

// NewWithRegistry creates metrics registered in reg. pushURL may be empty.
func NewWithRegistry(reg *prometheus.Registry, namespace, pushURL, job string) *Metrics {
	return &Metrics{
		shared: &registry{
			reg:        reg,
			namespace:  sanitize(namespace),
			pushURL:    pushURL,
			job:        job,
			labels:     make(map[string][]string),
			counters:   make(map[string]*prometheus.CounterVec),
			histograms: make(map[string]*prometheus.HistogramVec),
			gauges:     make(map[string]*prometheus.GaugeVec),
		},
		defaultTags: map[string]string{},
	}
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.shared.reg
}

// WithTags returns a new Metrics instance with additional default tags
func (m *Metrics) WithTags(tags map[string]string) observability.Metrics {
	return &Metrics{
		shared:      m.shared,
		defaultTags: m.mergeTags(tags),
	}
}

func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	tags = m.mergeTags(tags)

	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()

	fullName := m.shared.fullName(name) + "_total"
	vec, ok := m.shared.counters[fullName]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: fullName,
			Help: fmt.Sprintf("Counter %s", name),
		}, m.shared.labelNames(fullName, tags))
		if !m.shared.register(vec) {
			return
		}
		m.shared.counters[fullName] = vec
	}
	vec.WithLabelValues(m.shared.labelValues(fullName, tags)...).Inc()
}

func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	tags = m.mergeTags(tags)

	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()

	fullName := m.shared.fullName(name)
	vec, ok := m.shared.histograms[fullName]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    fullName,
			Help:    fmt.Sprintf("Histogram %s", name),
			Buckets: prometheus.DefBuckets,
		}, m.shared.labelNames(fullName, tags))
		if !m.shared.register(vec) {
			return
		}
		m.shared.histograms[fullName] = vec
	}
	vec.WithLabelValues(m.shared.labelValues(fullName, tags)...).Observe(value)
}

func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	tags = m.mergeTags(tags)

	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()

	fullName := m.shared.fullName(name)
	vec, ok := m.shared.gauges[fullName]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: fullName,
			Help: fmt.Sprintf("Gauge %s", name),
		}, m.shared.labelNames(fullName, tags))
		if !m.shared.register(vec) {
			return
		}
		m.shared.gauges[fullName] = vec
	}
	vec.WithLabelValues(m.shared.labelValues(fullName, tags)...).Set(value)
}

// Flush pushes the registry to the Pushgateway, if one is configured
func (m *Metrics) Flush(ctx context.Context) error {
	if m.shared.pushURL == "" {
		return nil
	}

	pusher := push.New(m.shared.pushURL, m.shared.job).Gatherer(m.shared.reg)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", m.shared.pushURL, err)
	}
	return nil
}

func (m *Metrics) mergeTags(tags map[string]string) map[string]string {
	merged := make(map[string]string, len(m.defaultTags)+len(tags))
	for k, v := range m.defaultTags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return merged
}

// register reports whether vec was registered. A name already taken by
// another metric type is dropped rather than panicking mid-run.
func (r *registry) register(c prometheus.Collector) bool {
	return r.reg.Register(c) == nil
}

func (r *registry) fullName(name string) string {
	name = sanitize(name)
	if r.namespace == "" {
		return name
	}
	return r.namespace + "_" + name
}

// labelNames fixes the label set of a metric from its first observation
func (r *registry) labelNames(fullName string, tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, sanitize(k))
	}
	sort.Strings(names)
	r.labels[fullName] = names
	return names
}

// labelValues maps tags onto the fixed label set. Missing labels are
// empty and labels outside the set are dropped.
func (r *registry) labelValues(fullName string, tags map[string]string) []string {
	byLabel := make(map[string]string, len(tags))
	for k, v := range tags {
		byLabel[sanitize(k)] = v
	}

	names := r.labels[fullName]
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = byLabel[n]
	}
	return values
}

func sanitize(name string) string {
	return strings.Trim(invalidNameChars.ReplaceAllString(name, "_"), "_")
}
