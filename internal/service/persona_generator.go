package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
	"synthetic-audience/internal/observability"
)

const (
	personaGenerationMaxTokens   = 4096
	personaGenerationTemperature = 0.9
)

// PersonaGenerator expande arquetipos en personas concretas.
// Solo devuelve error si el contexto se cancela; cualquier otro fallo termina en placeholders.
type PersonaGenerator interface {
	Generate(ctx context.Context, archetypes []domain.Archetype, contextFiles any) ([]domain.Persona, error)
}

// LLMPersonaGenerator hace una llamada por arquetipo.
type LLMPersonaGenerator struct {
	client  llm.LLMClient
	model   string
	prompts PersonaPromptBuilder
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewLLMPersonaGenerator(client llm.LLMClient, model string, metrics *observability.Metrics, logger *zap.Logger) *LLMPersonaGenerator {
	if model == "" {
		model = llm.DefaultModel
	}
	return &LLMPersonaGenerator{
		client:  client,
		model:   llm.ResolveModel(model),
		metrics: metrics,
		logger:  logger,
	}
}

// personaDraft es lo que devuelve el LLM; los campos ausentes quedan nil.
type personaDraft struct {
	Name          *flexText `json:"name"`
	Role          *flexText `json:"role"`
	Company       *flexText `json:"company"`
	Background    *flexText `json:"background"`
	Beliefs       *flexText `json:"beliefs"`
	DecisionStyle *flexText `json:"decision_style"`
}

// flexText acepta un string o una lista de strings (que se une como viñetas).
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexText(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	lines := make([]string, 0, len(list))
	for _, item := range list {
		lines = append(lines, "- "+item)
	}
	*f = flexText(strings.Join(lines, "\n"))
	return nil
}

func (s *LLMPersonaGenerator) Generate(ctx context.Context, archetypes []domain.Archetype, contextFiles any) ([]domain.Persona, error) {
	var personas []domain.Persona
	for _, a := range archetypes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate personas: %w", err)
		}
		if a.Count <= 0 {
			continue
		}
		drafts, err := s.draftsFor(ctx, a, contextFiles)
		if err != nil {
			return nil, err
		}
		for i := 0; i < a.Count; i++ {
			var d *personaDraft
			if i < len(drafts) {
				d = &drafts[i]
			}
			personas = append(personas, buildPersona(a, i, d))
		}
	}
	return personas, nil
}

// draftsFor devuelve los borradores parseados o nil (fallback). Error solo por contexto cancelado.
func (s *LLMPersonaGenerator) draftsFor(ctx context.Context, a domain.Archetype, contextFiles any) ([]personaDraft, error) {
	prompt, err := s.prompts.GenerationPrompt(a, contextFiles)
	if err != nil {
		s.logger.Warn("persona prompt render failed", zap.String("archetype_id", a.ID), zap.Error(err))
		s.metrics.RecordParseOutcome("personas", string(domain.OutcomeFallback))
		return nil, nil
	}

	out, err := s.client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Model:       s.model,
		Temperature: personaGenerationTemperature,
		MaxTokens:   personaGenerationMaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generate personas for %s: %w", a.ID, ctxErr)
		}
		s.logger.Warn("persona generation failed, using placeholders",
			zap.String("archetype_id", a.ID),
			zap.String("error_kind", string(llm.KindOf(err))),
			zap.Error(err),
		)
		s.metrics.RecordParseOutcome("personas", string(domain.OutcomeFallback))
		return nil, nil
	}

	decoded := decodeLLMJSON[[]personaDraft](out.Text, '[')
	s.metrics.RecordParseOutcome("personas", string(decoded.Outcome))
	if !decoded.Parsed() {
		s.logger.Warn("persona generation returned unparseable output, using placeholders",
			zap.String("archetype_id", a.ID),
		)
		return nil, nil
	}
	return decoded.Value, nil
}

// buildPersona aplica los defaults: sin borrador se usa el placeholder completo,
// con borrador los campos faltantes toman el valor por defecto de cada uno.
func buildPersona(a domain.Archetype, i int, d *personaDraft) domain.Persona {
	p := domain.Persona{
		ID:            a.ID + "-" + shortHex(),
		ArchetypeID:   a.ID,
		ArchetypeName: a.Name,
	}
	placeholderName := fmt.Sprintf("%s #%d", a.Name, i+1)

	if d == nil {
		background := a.Description
		if background == "" {
			background = fmt.Sprintf("A %s.", a.Name)
		}
		p.Name = placeholderName
		p.Role = a.Name
		p.Company = "Unknown"
		p.Background = background
		p.Beliefs = "Makes data-driven decisions."
		p.DecisionStyle = "Analytical and thorough."
		return p
	}

	p.Name = d.Name.or(placeholderName)
	p.Role = d.Role.or(a.Name)
	p.Company = d.Company.or("")
	p.Background = d.Background.or("")
	p.Beliefs = d.Beliefs.or("")
	p.DecisionStyle = d.DecisionStyle.or("")
	return p
}

func (f *flexText) or(def string) string {
	if f == nil {
		return def
	}
	return string(*f)
}

func shortHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
