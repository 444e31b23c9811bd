package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"synthetic-audience/internal/domain"
)

const (
	insightsResponseLimit = 1000
	insightsStimulusLimit = 500
)

var promptFuncs = template.FuncMap{
	"orDefault": func(def, v string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	},
}

var personaSystemTmpl = template.Must(template.New("persona_system").Funcs(promptFuncs).Parse(
	`You are {{.Name}}, a {{.Role}}.

Company: {{orDefault "N/A" .Company}}

Background:
{{.Background}}

Your beliefs and values:
{{.Beliefs}}

Decision-making style: {{.DecisionStyle}}

Respond to the following scenario fully in character. Be specific and authentic
to your persona's perspective, experience level, and decision-making style.
Do not break character or acknowledge that you are an AI.`))

var personaGenerationTmpl = template.Must(template.New("persona_generation").Parse(
	`Generate {{.Count}} unique, realistic personas for the archetype "{{.Name}}".

Archetype description: {{.Description}}
{{if .Characteristics}}
Key characteristics:
{{range .Characteristics}}- {{.}}
{{end}}{{end}}{{if .ContextJSON}}
Relevant context data:
{{.ContextJSON}}
{{end}}
For each persona, provide a JSON object with these fields:
- "name": A realistic full name (diverse names from different backgrounds)
- "role": Their specific job title
- "company": Company name and brief description
- "background": 2-3 sentences about their professional background
- "beliefs": 2-3 key beliefs or values that drive their decisions
- "decision_style": One sentence describing how they make decisions

Return ONLY a JSON array of {{.Count}} persona objects. No other text.`))

var insightsTmpl = template.Must(template.New("insights").Parse(
	`Analyze the following experiment results. The experiment asked {{.Successful}} synthetic personas to respond to this stimulus:

---
{{.Stimulus}}
---

Here are all persona responses:

{{.ResponsesJSON}}

Extract the following structured insights as JSON:

1. "themes": An array of objects, each with:
   - "theme": A short label for the theme
   - "count": How many personas touched on this theme
   - "examples": 1-2 brief quotes from responses that illustrate this theme

2. "recommendations": An array of 3-5 actionable recommendation strings for the decision-maker

3. "concerns": An array of objects, each with:
   - "concern": A short description of the concern
   - "frequency": How many personas raised this concern

4. "archetype_patterns": An object keyed by archetype name, each with:
   - "avg_sentiment": Average sentiment score for that archetype
   - "key_themes": 2-3 themes most common in that archetype

Return ONLY valid JSON with these four top-level keys. No markdown, no explanation.`))

type archetypePromptData struct {
	Count           int
	Name            string
	Description     string
	Characteristics []string
	ContextJSON     string
}

type insightsPromptData struct {
	Successful    int
	Stimulus      string
	ResponsesJSON string
}

// responseSummary es la vista condensada de un resultado que se envia al extractor.
type responseSummary struct {
	Persona   string  `json:"persona"`
	Archetype string  `json:"archetype"`
	Sentiment float64 `json:"sentiment"`
	Response  string  `json:"response"`
}

// PersonaPromptBuilder renderiza los prompts con plantillas tipadas. No tiene estado.
type PersonaPromptBuilder struct{}

// SystemPrompt pone al modelo en el personaje.
func (PersonaPromptBuilder) SystemPrompt(p domain.Persona) (string, error) {
	return render(personaSystemTmpl, p)
}

// GenerationPrompt pide count personas para un arquetipo, con contexto opcional.
func (PersonaPromptBuilder) GenerationPrompt(a domain.Archetype, contextFiles any) (string, error) {
	ctxJSON, err := contextFilesJSON(contextFiles)
	if err != nil {
		return "", err
	}
	return render(personaGenerationTmpl, archetypePromptData{
		Count:           a.Count,
		Name:            a.Name,
		Description:     a.Description,
		Characteristics: a.Characteristics,
		ContextJSON:     ctxJSON,
	})
}

// InsightsPrompt resume las respuestas exitosas; corta respuestas y estimulo.
func (PersonaPromptBuilder) InsightsPrompt(stimulus string, successful []domain.ExecutionResult) (string, error) {
	summaries := make([]responseSummary, 0, len(successful))
	for _, r := range successful {
		summaries = append(summaries, responseSummary{
			Persona:   orUnknown(r.PersonaName),
			Archetype: orUnknown(r.ArchetypeName),
			Sentiment: r.Sentiment,
			Response:  truncateRunes(r.ResponseText(), insightsResponseLimit),
		})
	}
	raw, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal response summaries: %w", err)
	}
	return render(insightsTmpl, insightsPromptData{
		Successful:    len(successful),
		Stimulus:      truncateRunes(stimulus, insightsStimulusLimit),
		ResponsesJSON: string(raw),
	})
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}

// contextFilesJSON serializa el contexto; valores vacios no generan seccion.
func contextFilesJSON(files any) (string, error) {
	if files == nil {
		return "", nil
	}
	raw, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal context files: %w", err)
	}
	switch s := string(raw); s {
	case "null", "[]", "{}", `""`, "false", "0":
		return "", nil
	default:
		return s, nil
	}
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
