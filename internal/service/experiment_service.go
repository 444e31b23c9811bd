package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"synthetic-audience/internal/analytics"
	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
	"synthetic-audience/internal/observability"
	"synthetic-audience/internal/repository"
)

const (
	defaultExperimentID = "unknown"
	defaultTemperature  = 0.7
	defaultMaxTokens    = 500
	maxTemperature      = 2.0

	// DefaultMaxPersonas limita el tamaño de un run.
	DefaultMaxPersonas = 200
	// DefaultExecutionTimeout es el timeout por tarea si el request no trae uno.
	DefaultExecutionTimeout = 120 * time.Second
)

// ArchetypeCatalog completa arquetipos del request con los datos guardados.
type ArchetypeCatalog interface {
	GetByID(ctx context.Context, id string) (domain.Archetype, error)
}

// ExperimentSettings son los limites y defaults del servicio.
type ExperimentSettings struct {
	MaxPersonas    int
	DefaultTimeout time.Duration
	DefaultModel   string
}

// ExperimentService orquesta un run: personas, fan-out, agregados y resumen.
type ExperimentService struct {
	generator PersonaGenerator
	executor  *Executor
	insights  InsightExtractor
	catalog   ArchetypeCatalog
	settings  ExperimentSettings
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewExperimentService arma el orquestador. insights y catalog pueden ser nil (deshabilitados).
func NewExperimentService(
	generator PersonaGenerator,
	executor *Executor,
	insights InsightExtractor,
	catalog ArchetypeCatalog,
	settings ExperimentSettings,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ExperimentService {
	if settings.MaxPersonas <= 0 {
		settings.MaxPersonas = DefaultMaxPersonas
	}
	if settings.DefaultTimeout <= 0 {
		settings.DefaultTimeout = DefaultExecutionTimeout
	}
	if settings.DefaultModel == "" {
		settings.DefaultModel = llm.DefaultModel
	}
	return &ExperimentService{
		generator: generator,
		executor:  executor,
		insights:  insights,
		catalog:   catalog,
		settings:  settings,
		metrics:   metrics,
		logger:    logger,
	}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Prepare valida el request y aplica defaults. Cualquier error envuelve domain.ErrInvalidRequest
// y se produce antes de despachar nada.
func (s *ExperimentService) Prepare(ctx context.Context, req domain.ExperimentRequest) (domain.Experiment, error) {
	id := strings.TrimSpace(req.ExperimentID)
	if id == "" {
		id = defaultExperimentID
	}

	if len(req.Personas.Archetypes) == 0 {
		return domain.Experiment{}, invalidf("personas.archetypes must not be empty")
	}
	stimulus := req.Stimulus.Template
	if strings.TrimSpace(stimulus) == "" {
		return domain.Experiment{}, invalidf("stimulus.template must not be empty")
	}

	archetypes := make([]domain.Archetype, 0, len(req.Personas.Archetypes))
	total := 0
	for i, spec := range req.Personas.Archetypes {
		a, err := s.resolveArchetype(ctx, spec)
		if err != nil {
			return domain.Experiment{}, fmt.Errorf("archetype %d: %w", i, err)
		}
		total += a.Count
		archetypes = append(archetypes, a)
	}
	if total > s.settings.MaxPersonas {
		return domain.Experiment{}, invalidf("total personas %d exceeds limit %d", total, s.settings.MaxPersonas)
	}

	params, err := s.executionParams(stimulus, req.Execution)
	if err != nil {
		return domain.Experiment{}, err
	}

	return domain.Experiment{
		ID:           id,
		Archetypes:   archetypes,
		Params:       params,
		ContextFiles: req.Context.Files,
	}, nil
}

// resolveArchetype normaliza un arquetipo. El count explicito gana; si falta, se usa el del
// catalogo y por ultimo 1.
func (s *ExperimentService) resolveArchetype(ctx context.Context, spec domain.ArchetypeSpec) (domain.Archetype, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		return domain.Archetype{}, invalidf("id is required")
	}
	if spec.Count != nil && *spec.Count < 0 {
		return domain.Archetype{}, invalidf("count must be >= 0")
	}

	a := domain.Archetype{
		ID:              id,
		Name:            strings.TrimSpace(spec.Name),
		Description:     spec.Description,
		Characteristics: spec.Characteristics,
	}

	stored, found := s.lookup(ctx, id)
	if found {
		if a.Name == "" {
			a.Name = stored.Name
		}
		if a.Description == "" {
			a.Description = stored.Description
		}
		if len(a.Characteristics) == 0 {
			a.Characteristics = stored.Characteristics
		}
	}
	if a.Name == "" {
		a.Name = id
	}
	if a.Characteristics == nil {
		a.Characteristics = []string{}
	}

	switch {
	case spec.Count != nil:
		a.Count = *spec.Count
	case found && stored.Count > 0:
		a.Count = stored.Count
	default:
		a.Count = 1
	}
	return a, nil
}

func (s *ExperimentService) lookup(ctx context.Context, id string) (domain.Archetype, bool) {
	if s.catalog == nil {
		return domain.Archetype{}, false
	}
	stored, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrArchetypeNotFound) {
			s.logger.Warn("archetype catalog lookup failed", zap.String("archetype_id", id), zap.Error(err))
		}
		return domain.Archetype{}, false
	}
	return stored, true
}

func (s *ExperimentService) executionParams(stimulus string, cfg domain.ExecutionConfig) (domain.ExecutionParams, error) {
	params := domain.ExecutionParams{
		Stimulus:    stimulus,
		Model:       llm.ResolveModel(cfg.Model),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Timeout:     s.settings.DefaultTimeout,
	}
	if params.Model == "" {
		params.Model = llm.ResolveModel(s.settings.DefaultModel)
	}
	if cfg.Temperature != nil {
		if *cfg.Temperature < 0 || *cfg.Temperature > maxTemperature {
			return domain.ExecutionParams{}, invalidf("execution.temperature must be within [0, 2]")
		}
		params.Temperature = *cfg.Temperature
	}
	if cfg.MaxTokens != nil {
		if *cfg.MaxTokens <= 0 {
			return domain.ExecutionParams{}, invalidf("execution.maxTokens must be > 0")
		}
		params.MaxTokens = *cfg.MaxTokens
	}
	if cfg.Timeout != nil {
		if *cfg.Timeout < 0 {
			return domain.ExecutionParams{}, invalidf("execution.timeout must be >= 0")
		}
		params.Timeout = time.Duration(*cfg.Timeout) * time.Second
	}
	return params, nil
}

// Stream ejecuta el experimento y devuelve el stream ordenado de eventos. El canal no tiene
// buffer: cada evento se entrega en cuanto el consumidor lo lee. Si ctx se cancela se deja de
// reenviar y el canal se cierra. Termina siempre con experiment_complete o con error.
func (s *ExperimentService) Stream(ctx context.Context, exp domain.Experiment) <-chan domain.Event {
	events := make(chan domain.Event)

	go func() {
		defer close(events)

		start := time.Now()
		ctx, span := observability.StartSpan(ctx, "experiment_run",
			attribute.String("experiment_id", exp.ID),
			attribute.Int("personas", exp.TotalPersonas()),
		)
		var runErr error
		defer func() { observability.EndSpan(span, runErr) }()

		emit := func(ev domain.Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		abandon := func() {
			runErr = ctx.Err()
			s.metrics.RecordRun("cancelled")
			s.logger.Info("experiment stream abandoned", zap.String("experiment_id", exp.ID))
		}

		if !emit(domain.NewStatusEvent(exp.ID, "Generating personas...")) {
			abandon()
			return
		}

		personas, err := s.generator.Generate(ctx, exp.Archetypes, exp.ContextFiles)
		if err != nil {
			runErr = err
			s.metrics.RecordRun("error")
			s.logger.Warn("persona generation aborted", zap.String("experiment_id", exp.ID), zap.Error(err))
			emit(domain.NewErrorEvent(exp.ID, fmt.Sprintf("persona generation aborted: %v", err)))
			return
		}

		for _, p := range personas {
			if !emit(domain.NewPersonaGeneratedEvent(exp.ID, p)) {
				abandon()
				return
			}
		}

		if !emit(domain.NewStatusEvent(exp.ID, fmt.Sprintf("Running %d persona responses in parallel...", len(personas)))) {
			abandon()
			return
		}

		results := make([]domain.ExecutionResult, 0, len(personas))
		for r := range s.executor.Run(ctx, personas, exp.Params) {
			results = append(results, r)
			if !emit(domain.NewResponseCompleteEvent(exp.ID, r)) {
				abandon()
				return
			}
		}

		metrics := analytics.Aggregate(results, len(personas), time.Since(start))
		price := analytics.AnalyzePriceSensitivity(analytics.PriceSamplesFromResults(results))

		var insights *domain.Insights
		if s.insights != nil {
			extracted := s.insights.Extract(ctx, exp.Params.Stimulus, results)
			insights = &extracted
		}

		if !emit(domain.NewExperimentCompleteEvent(exp.ID, results, metrics, price, insights)) {
			abandon()
			return
		}
		s.metrics.RecordRun("success")
		s.logger.Info("experiment completed",
			zap.String("experiment_id", exp.ID),
			zap.Int("personas", metrics.TotalPersonas),
			zap.Int("failed", metrics.FailedResponses),
			zap.Float64("elapsed_seconds", metrics.ElapsedSeconds),
		)
	}()

	return events
}

// Run es Prepare + Stream en una sola llamada, usado por el CLI.
func (s *ExperimentService) Run(ctx context.Context, req domain.ExperimentRequest) (domain.Experiment, <-chan domain.Event, error) {
	exp, err := s.Prepare(ctx, req)
	if err != nil {
		return domain.Experiment{}, nil, err
	}
	return exp, s.Stream(ctx, exp), nil
}
