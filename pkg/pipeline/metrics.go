package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the pipeline.
type Metrics struct {
	StagesTotal          *prometheus.CounterVec
	StageSeconds         *prometheus.HistogramVec
	ClassificationsTotal *prometheus.CounterVec
	FieldErrorsTotal     *prometheus.CounterVec
	SynthesisTotal       *prometheus.CounterVec
	SynthesisSeconds     *prometheus.HistogramVec
	TokensTotal          *prometheus.CounterVec
	ArtifactsTotal       *prometheus.CounterVec
}

// DefaultMetrics creates metrics on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of pipeline metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_stages_total",
				Help: "Total stage executions by outcome",
			},
			[]string{"stage", "status"},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recap_stage_seconds",
				Help:    "Stage latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_classifications_total",
				Help: "Total classifications by shape",
			},
			[]string{"shape", "operation"},
		),
		FieldErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_field_errors_total",
				Help: "Recoverable field errors recorded during extraction",
			},
			[]string{"shape", "kind"},
		),
		SynthesisTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_synthesis_total",
				Help: "Total synthesis calls by outcome",
			},
			[]string{"model", "status"},
		),
		SynthesisSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recap_synthesis_seconds",
				Help:    "Synthesis call latency",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30, 60},
			},
			[]string{"model"},
		),
		TokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_tokens_total",
				Help: "Total tokens exchanged with the model",
			},
			[]string{"direction", "model"},
		),
		ArtifactsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recap_artifacts_written_total",
				Help: "Total report artifacts written",
			},
			[]string{"shape"},
		),
	}
}

// RecordStage records a stage execution and its latency.
func (m *Metrics) RecordStage(stage, status string, seconds float64) {
	m.StagesTotal.WithLabelValues(stage, status).Inc()
	m.StageSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordClassification records a classified payload.
func (m *Metrics) RecordClassification(shape, operation string) {
	m.ClassificationsTotal.WithLabelValues(shape, operation).Inc()
}

// RecordFieldError records a recoverable extraction error.
func (m *Metrics) RecordFieldError(shape, kind string) {
	m.FieldErrorsTotal.WithLabelValues(shape, kind).Inc()
}

// RecordSynthesis records a synthesis call with its token usage.
func (m *Metrics) RecordSynthesis(model, status string, seconds float64, inputTokens, outputTokens int) {
	m.SynthesisTotal.WithLabelValues(model, status).Inc()
	m.SynthesisSeconds.WithLabelValues(model).Observe(seconds)
	if inputTokens > 0 {
		m.TokensTotal.WithLabelValues("input", model).Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.TokensTotal.WithLabelValues("output", model).Add(float64(outputTokens))
	}
}

// RecordArtifact records a written artifact.
func (m *Metrics) RecordArtifact(shape string) {
	m.ArtifactsTotal.WithLabelValues(shape).Inc()
}
