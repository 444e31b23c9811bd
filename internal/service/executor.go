package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"synthetic-audience/internal/analytics"
	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
	"synthetic-audience/internal/observability"
)

// DefaultConcurrency es el maximo de llamadas simultaneas al backend por run.
const DefaultConcurrency = 10

// Executor corre una tarea por persona con a lo sumo concurrency en vuelo.
type Executor struct {
	client      llm.LLMClient
	concurrency int
	prompts     PersonaPromptBuilder
	metrics     *observability.Metrics
	logger      *zap.Logger
}

func NewExecutor(client llm.LLMClient, concurrency int, metrics *observability.Metrics, logger *zap.Logger) *Executor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Executor{
		client:      client,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run despacha todas las tareas y entrega los resultados en orden de finalizacion.
// El canal tiene buffer para todas las personas: si el consumidor se va, los productores
// no se bloquean. Se cierra cuando termina la ultima tarea.
func (e *Executor) Run(ctx context.Context, personas []domain.Persona, params domain.ExecutionParams) <-chan domain.ExecutionResult {
	results := make(chan domain.ExecutionResult, len(personas))

	go func() {
		defer close(results)
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for _, p := range personas {
			g.Go(func() error {
				results <- e.execute(ctx, p, params)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return results
}

type callResult struct {
	out llm.Completion
	err error
}

// execute nunca falla: cualquier error (incluido un panic) queda en el resultado.
func (e *Executor) execute(ctx context.Context, p domain.Persona, params domain.ExecutionParams) (result domain.ExecutionResult) {
	start := time.Now()
	result = domain.ExecutionResult{
		PersonaID:     p.ID,
		PersonaName:   p.Name,
		ArchetypeID:   p.ArchetypeID,
		ArchetypeName: p.ArchetypeName,
		Model:         params.Model,
	}

	ctx, span := observability.StartSpan(ctx, "persona_task",
		attribute.String("persona_id", p.ID),
		attribute.String("archetype_id", p.ArchetypeID),
	)
	e.metrics.TaskStarted()

	defer func() {
		if r := recover(); r != nil {
			result = failedResult(result, fmt.Sprintf("%s: %v", llm.KindPanic, r))
			e.logger.Error("persona task panicked", zap.String("persona_id", p.ID), zap.Any("panic", r))
		}
		result.ElapsedSeconds = analytics.Round(time.Since(start).Seconds(), 2)

		kind := ""
		var spanErr error
		if result.Error != nil {
			kind = errorKindOf(*result.Error)
			spanErr = errors.New(*result.Error)
		}
		e.metrics.TaskFinished(params.Model, kind, time.Since(start).Seconds(), result.Tokens.Input, result.Tokens.Output)
		observability.EndSpan(span, spanErr)
	}()

	system, err := e.prompts.SystemPrompt(p)
	if err != nil {
		return failedResult(result, fmt.Sprintf("%s: %v", llm.KindMalformedResponse, err))
	}

	out, err := e.call(ctx, params, llm.Request{
		System:      system,
		Prompt:      params.Stimulus,
		Model:       params.Model,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		e.logger.Debug("persona task failed", zap.String("persona_id", p.ID), zap.Error(err))
		return failedResult(result, llm.Describe(err))
	}

	text := out.Text
	result.Response = &text
	result.Sentiment = analytics.ScoreSentiment(text)
	result.Tokens = domain.TokenUsage{Input: out.InputTokens, Output: out.OutputTokens}
	return result
}

// call aplica el timeout de la tarea aunque el backend ignore el contexto.
func (e *Executor) call(ctx context.Context, params domain.ExecutionParams, req llm.Request) (llm.Completion, error) {
	if params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: &llm.Error{Kind: llm.KindPanic, Err: fmt.Errorf("%v", r)}}
			}
		}()
		out, err := e.client.Generate(ctx, req)
		done <- callResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && llm.KindOf(res.err) == llm.KindTransport && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return llm.Completion{}, &llm.Error{Kind: llm.KindTimeout, Err: res.err}
		}
		return res.out, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return llm.Completion{}, &llm.Error{Kind: llm.KindTimeout, Err: fmt.Errorf("no response within %s", params.Timeout)}
		}
		return llm.Completion{}, &llm.Error{Kind: llm.KindTransport, Err: ctx.Err()}
	}
}

func failedResult(r domain.ExecutionResult, descriptor string) domain.ExecutionResult {
	r.Response = nil
	r.Sentiment = 0
	r.Tokens = domain.TokenUsage{}
	r.Error = &descriptor
	return r
}

func errorKindOf(descriptor string) string {
	kind, _, _ := strings.Cut(descriptor, ":")
	return kind
}
