package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa la telemetria de proceso. No alimenta el resumen de un experimento.
// Todos los metodos aceptan receptor nil (metricas deshabilitadas).
type Metrics struct {
	// Labels: status (success|error|cancelled)
	RunsTotal *prometheus.CounterVec

	// Labels: status (success|failure), error_kind
	TasksTotal *prometheus.CounterVec

	// Labels: model
	TaskDuration *prometheus.HistogramVec

	// Labels: model, type (input|output)
	TokensTotal *prometheus.CounterVec

	InFlightTasks prometheus.Gauge

	// Labels: outcome (parsed|fallback), collaborator (personas|insights)
	ParseOutcomes *prometheus.CounterVec

	// Labels: result (allowed|limited|error)
	RateLimitDecisions *prometheus.CounterVec
}

// NewMetrics registra las metricas en reg. Con reg nil usa el registro por defecto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audience_runs_total",
				Help: "Experiment runs by final status",
			},
			[]string{"status"},
		),
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audience_tasks_total",
				Help: "Persona tasks by status and error kind",
			},
			[]string{"status", "error_kind"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "audience_task_duration_seconds",
				Help:    "Duration of persona tasks in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"model"},
		),
		TokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audience_llm_tokens_total",
				Help: "Tokens consumed by type",
			},
			[]string{"model", "type"},
		),
		InFlightTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "audience_tasks_in_flight",
				Help: "Persona tasks currently calling the backend",
			},
		),
		ParseOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audience_llm_parse_outcomes_total",
				Help: "Structured LLM outputs by outcome",
			},
			[]string{"collaborator", "outcome"},
		),
		RateLimitDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audience_rate_limit_decisions_total",
				Help: "Run rate limiter decisions",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.InFlightTasks.Inc()
}

// TaskFinished registra una tarea terminada. errorKind vacio significa exito.
func (m *Metrics) TaskFinished(model, errorKind string, durationSeconds float64, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.InFlightTasks.Dec()
	status := "success"
	if errorKind != "" {
		status = "failure"
	}
	m.TasksTotal.WithLabelValues(status, errorKind).Inc()
	m.TaskDuration.WithLabelValues(model).Observe(durationSeconds)
	if inputTokens > 0 {
		m.TokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.TokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

func (m *Metrics) RecordParseOutcome(collaborator, outcome string) {
	if m == nil {
		return
	}
	m.ParseOutcomes.WithLabelValues(collaborator, outcome).Inc()
}

func (m *Metrics) RecordRateLimit(result string) {
	if m == nil {
		return
	}
	m.RateLimitDecisions.WithLabelValues(result).Inc()
}
