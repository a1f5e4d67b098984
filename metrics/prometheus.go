package metrics

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
	"github.com/saiset-co/sai-http-stack/utils"
)

type PrometheusConfig struct {
	Namespace       string            `yaml:"namespace" json:"namespace"`
	Subsystem       string            `yaml:"subsystem" json:"subsystem"`
	Labels          map[string]string `yaml:"labels" json:"labels"`
	EnableGoMetrics bool              `yaml:"enable_go_metrics" json:"enable_go_metrics"`
}

type PrometheusMetrics struct {
	logger     types.Logger
	config     *PrometheusConfig
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	mu         sync.RWMutex
	running    int32
}

func NewPrometheusMetrics(logger types.Logger, config *Config) (types.MetricsManager, error) {
	promConfig := &PrometheusConfig{
		Namespace:       "sai_http_stack",
		Labels:          make(map[string]string),
		EnableGoMetrics: true,
	}

	if config.Config != nil {
		if err := utils.UnmarshalConfig(config.Config, promConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal prometheus config")
		}
	}

	registry := prometheus.NewRegistry()
	if promConfig.EnableGoMetrics {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	metrics := &PrometheusMetrics{
		logger:     logger,
		config:     promConfig,
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	logger.Info("Prometheus metrics initialized",
		zap.String("namespace", promConfig.Namespace),
		zap.Bool("go_metrics", promConfig.EnableGoMetrics))

	return metrics, nil
}

func (p *PrometheusMetrics) Start() error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return types.ErrAlreadyRunning
	}
	return nil
}

func (p *PrometheusMetrics) Stop() error {
	if !atomic.CompareAndSwapInt32(&p.running, 1, 0) {
		return types.ErrNotRunning
	}
	return nil
}

func (p *PrometheusMetrics) IsRunning() bool {
	return atomic.LoadInt32(&p.running) == 1
}

func (p *PrometheusMetrics) Counter(name string, labels map[string]string) types.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	counter, exists := p.counters[name]
	if !exists {
		counter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   p.config.Namespace,
				Subsystem:   p.config.Subsystem,
				Name:        name,
				Help:        fmt.Sprintf("Counter metric %s", name),
				ConstLabels: p.config.Labels,
			},
			labelNames(labels),
		)
		p.registry.MustRegister(counter)
		p.counters[name] = counter
	}

	return &prometheusCounter{counter: counter, labels: labels}
}

func (p *PrometheusMetrics) Gauge(name string, labels map[string]string) types.Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	gauge, exists := p.gauges[name]
	if !exists {
		gauge = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   p.config.Namespace,
				Subsystem:   p.config.Subsystem,
				Name:        name,
				Help:        fmt.Sprintf("Gauge metric %s", name),
				ConstLabels: p.config.Labels,
			},
			labelNames(labels),
		)
		p.registry.MustRegister(gauge)
		p.gauges[name] = gauge
	}

	return &prometheusGauge{gauge: gauge, labels: labels}
}

func (p *PrometheusMetrics) Histogram(name string, buckets []float64, labels map[string]string) types.Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	histogram, exists := p.histograms[name]
	if !exists {
		histogram = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   p.config.Namespace,
				Subsystem:   p.config.Subsystem,
				Name:        name,
				Help:        fmt.Sprintf("Histogram metric %s", name),
				ConstLabels: p.config.Labels,
				Buckets:     buckets,
			},
			labelNames(labels),
		)
		p.registry.MustRegister(histogram)
		p.histograms[name] = histogram
	}

	return &prometheusHistogram{histogram: histogram, labels: labels}
}

// GetMetrics returns the gathered metric families encoded as JSON.
func (p *PrometheusMetrics) GetMetrics() ([]byte, error) {
	families, err := p.registry.Gather()
	if err != nil {
		return nil, types.WrapError(err, "failed to gather metrics")
	}
	return utils.Marshal(families)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type prometheusCounter struct {
	counter *prometheus.CounterVec
	labels  map[string]string
}

func (c *prometheusCounter) Inc() {
	c.counter.With(c.labels).Inc()
}

func (c *prometheusCounter) Add(value float64) {
	c.counter.With(c.labels).Add(value)
}

type prometheusGauge struct {
	gauge  *prometheus.GaugeVec
	labels map[string]string
}

func (g *prometheusGauge) Set(value float64) {
	g.gauge.With(g.labels).Set(value)
}

func (g *prometheusGauge) Inc() {
	g.gauge.With(g.labels).Inc()
}

func (g *prometheusGauge) Dec() {
	g.gauge.With(g.labels).Dec()
}

type prometheusHistogram struct {
	histogram *prometheus.HistogramVec
	labels    map[string]string
}

func (h *prometheusHistogram) Observe(value float64) {
	h.histogram.With(h.labels).Observe(value)
}

func (h *prometheusHistogram) ObserveDuration(start time.Time) {
	h.histogram.With(h.labels).Observe(time.Since(start).Seconds())
}
