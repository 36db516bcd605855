package metrics

import (
	"time"

	"aeye-server/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aeye"

// AnalysisMetrics implements repository.AnalysisObserver on Prometheus collectors.
type AnalysisMetrics struct {
	requestsTotal   *prometheus.CounterVec
	delaySeconds    prometheus.Histogram
	detectionsTotal *prometheus.CounterVec
	contextsTotal   prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewAnalysisMetrics registers its collectors on reg. A fresh registry per
// server keeps tests independent of the global default.
func NewAnalysisMetrics(reg *prometheus.Registry) *AnalysisMetrics {
	m := &AnalysisMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analyze",
				Name:      "requests_total",
				Help:      "Analysis requests by outcome.",
			},
			[]string{"outcome"},
		),
		delaySeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "analyze",
				Name:      "simulated_delay_seconds",
				Help:      "Simulated processing delay waited before responding.",
				Buckets:   []float64{0.2, 0.4, 0.6, 0.8, 1.0, 1.2},
			},
		),
		detectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analyze",
				Name:      "detections_total",
				Help:      "Synthesized detections by kind.",
			},
			[]string{"kind"},
		),
		contextsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analyze",
				Name:      "contexts_total",
				Help:      "Responses that carried a context string.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.requestsTotal,
		m.delaySeconds,
		m.detectionsTotal,
		m.contextsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *AnalysisMetrics) ObserveOutcome(outcome string) {
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

func (m *AnalysisMetrics) ObserveDelay(d time.Duration) {
	m.delaySeconds.Observe(d.Seconds())
}

func (m *AnalysisMetrics) ObserveResponse(resp *entity.AnalysisResponse) {
	m.detectionsTotal.WithLabelValues("recognized_face").Add(float64(len(resp.RecognizedFaces)))
	m.detectionsTotal.WithLabelValues("unknown_face").Add(float64(resp.UnknownFaces))
	m.detectionsTotal.WithLabelValues("object").Add(float64(len(resp.Objects)))
	if resp.Context != nil {
		m.contextsTotal.Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *AnalysisMetrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
