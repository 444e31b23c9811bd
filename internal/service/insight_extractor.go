package service

import (
	"context"

	"go.uber.org/zap"

	"synthetic-audience/internal/analytics"
	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
	"synthetic-audience/internal/observability"
)

const (
	// InsightsDefaultModel es el modelo barato usado para resumir.
	InsightsDefaultModel = "claude-haiku-4-5-20251001"

	insightsMaxTokens   = 2048
	insightsTemperature = 0.3

	fallbackRecommendation = "Review individual persona responses for detailed insights."
)

// InsightExtractor resume los resultados de un run. Nunca falla: sin LLM util cae al resumen local.
type InsightExtractor interface {
	Extract(ctx context.Context, stimulus string, results []domain.ExecutionResult) domain.Insights
}

type LLMInsightExtractor struct {
	client  llm.LLMClient
	model   string
	prompts PersonaPromptBuilder
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewLLMInsightExtractor(client llm.LLMClient, model string, metrics *observability.Metrics, logger *zap.Logger) *LLMInsightExtractor {
	if model == "" {
		model = InsightsDefaultModel
	}
	return &LLMInsightExtractor{
		client:  client,
		model:   llm.ResolveModel(model),
		metrics: metrics,
		logger:  logger,
	}
}

// insightsPayload usa punteros para detectar claves ausentes.
type insightsPayload struct {
	Themes            *[]domain.Theme                     `json:"themes"`
	Recommendations   *[]string                           `json:"recommendations"`
	Concerns          *[]domain.Concern                   `json:"concerns"`
	ArchetypePatterns *map[string]domain.ArchetypePattern `json:"archetype_patterns"`
}

func (s *LLMInsightExtractor) Extract(ctx context.Context, stimulus string, results []domain.ExecutionResult) domain.Insights {
	successful := successfulResults(results)
	if len(successful) == 0 {
		return domain.EmptyInsights()
	}

	prompt, err := s.prompts.InsightsPrompt(stimulus, successful)
	if err != nil {
		s.logger.Warn("insights prompt render failed", zap.Error(err))
		return s.fallback(successful)
	}

	out, err := s.client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Model:       s.model,
		Temperature: insightsTemperature,
		MaxTokens:   insightsMaxTokens,
	})
	if err != nil {
		s.logger.Warn("insight extraction failed, using local summary",
			zap.String("error_kind", string(llm.KindOf(err))),
			zap.Error(err),
		)
		return s.fallback(successful)
	}

	decoded := decodeLLMJSON[insightsPayload](out.Text, '{')
	if !decoded.Parsed() {
		s.logger.Warn("insight extraction returned unparseable output, using local summary")
		return s.fallback(successful)
	}
	s.metrics.RecordParseOutcome("insights", string(domain.OutcomeParsed))

	insights := domain.EmptyInsights()
	insights.Source = domain.OutcomeParsed
	p := decoded.Value
	if p.Themes != nil && *p.Themes != nil {
		insights.Themes = *p.Themes
	}
	if p.Recommendations != nil && *p.Recommendations != nil {
		insights.Recommendations = *p.Recommendations
	}
	if p.Concerns != nil && *p.Concerns != nil {
		insights.Concerns = *p.Concerns
	}
	if p.ArchetypePatterns != nil && *p.ArchetypePatterns != nil {
		insights.ArchetypePatterns = *p.ArchetypePatterns
	}
	return insights
}

func (s *LLMInsightExtractor) fallback(successful []domain.ExecutionResult) domain.Insights {
	s.metrics.RecordParseOutcome("insights", string(domain.OutcomeFallback))
	return LocalInsights(successful)
}

// LocalInsights calcula el resumen sin LLM: media de sentimiento por arquetipo y una
// recomendacion generica.
func LocalInsights(results []domain.ExecutionResult) domain.Insights {
	successful := successfulResults(results)
	if len(successful) == 0 {
		return domain.EmptyInsights()
	}

	type acc struct {
		sum   float64
		count int
	}
	byArchetype := make(map[string]acc)
	for _, r := range successful {
		a := byArchetype[r.ArchetypeName]
		a.sum += r.Sentiment
		a.count++
		byArchetype[r.ArchetypeName] = a
	}

	insights := domain.EmptyInsights()
	insights.Source = domain.OutcomeFallback
	insights.Recommendations = []string{fallbackRecommendation}
	for name, a := range byArchetype {
		insights.ArchetypePatterns[name] = domain.ArchetypePattern{
			AvgSentiment: analytics.Round(a.sum/float64(a.count), 3),
			KeyThemes:    []string{},
		}
	}
	return insights
}

func successfulResults(results []domain.ExecutionResult) []domain.ExecutionResult {
	out := make([]domain.ExecutionResult, 0, len(results))
	for _, r := range results {
		if r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}
