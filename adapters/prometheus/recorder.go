package prometheus

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-kaduu/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultLabels are the tag keys exported as labels. Tags outside the set are
// dropped so every series of a metric shares one label schema.
var DefaultLabels = []string{"operation", "status", "node", "error_code", "job_id", "phase"}

// DefaultDurationBuckets cover millisecond durations from 5ms to ~20s.
var DefaultDurationBuckets = prometheus.ExponentialBuckets(5, 2, 12)

// Recorder exports core metrics through a prometheus registerer. Metric
// vectors are registered the first time a name is seen.
type Recorder struct {
	factory promauto.Factory
	labels  []string
	buckets []float64

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

type Option func(*Recorder)

func WithLabels(labels ...string) Option {
	return func(r *Recorder) {
		next := make([]string, 0, len(labels))
		seen := map[string]struct{}{}
		for _, label := range labels {
			name := sanitizeName(label)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			next = append(next, name)
		}
		if len(next) > 0 {
			r.labels = next
		}
	}
}

func WithBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

func NewRecorder(reg prometheus.Registerer, opts ...Option) *Recorder {
	r := &Recorder{
		factory:    promauto.With(reg),
		labels:     append([]string(nil), DefaultLabels...),
		buckets:    DefaultDurationBuckets,
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	vec := r.counter(name)
	if vec == nil {
		return
	}
	vec.WithLabelValues(r.labelValues(tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	vec := r.histogram(name)
	if vec == nil {
		return
	}
	vec.WithLabelValues(r.labelValues(tags)...).Observe(value)
}

func (r *Recorder) counter(name string) *prometheus.CounterVec {
	metricName := CounterName(name)
	if metricName == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.counters[metricName]; ok {
		return vec
	}
	vec := r.factory.NewCounterVec(prometheus.CounterOpts{
		Name: metricName,
		Help: "Counter for " + strings.TrimSpace(name) + ".",
	}, r.labels)
	r.counters[metricName] = vec
	return vec
}

func (r *Recorder) histogram(name string) *prometheus.HistogramVec {
	metricName := sanitizeName(name)
	if metricName == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if vec, ok := r.histograms[metricName]; ok {
		return vec
	}
	vec := r.factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricName,
		Help:    "Histogram for " + strings.TrimSpace(name) + ".",
		Buckets: r.buckets,
	}, r.labels)
	r.histograms[metricName] = vec
	return vec
}

func (r *Recorder) labelValues(tags map[string]string) []string {
	values := make([]string, len(r.labels))
	for key, value := range tags {
		name := sanitizeName(key)
		for idx, label := range r.labels {
			if label == name {
				values[idx] = value
				break
			}
		}
	}
	return values
}

// CounterName maps a dotted metric name to a prometheus counter name ending
// in _total.
func CounterName(name string) string {
	sanitized := sanitizeName(name)
	if sanitized == "" || strings.HasSuffix(sanitized, "_total") {
		return sanitized
	}
	return sanitized + "_total"
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for idx, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if idx == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

var _ core.MetricsRecorder = (*Recorder)(nil)
