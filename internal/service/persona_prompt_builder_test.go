package service

import (
	"strings"
	"testing"

	"synthetic-audience/internal/domain"
)

func TestSystemPromptRendersPersona(t *testing.T) {
	p := domain.Persona{
		Name:          "Ana Ruiz",
		Role:          "Partner",
		Background:    "Former founder.",
		Beliefs:       "Team over idea.",
		DecisionStyle: "Fast and intuitive.",
	}
	got, err := PersonaPromptBuilder{}.SystemPrompt(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"You are Ana Ruiz, a Partner.",
		"Company: N/A",
		"Former founder.",
		"Decision-making style: Fast and intuitive.",
		"Do not break character",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, got)
		}
	}

	again, _ := PersonaPromptBuilder{}.SystemPrompt(p)
	if again != got {
		t.Fatalf("rendering must be deterministic")
	}
}

func TestSystemPromptDoesNotInterpretPersonaText(t *testing.T) {
	p := domain.Persona{Name: "{{.Role}}", Role: "CTO", Company: "<Acme & Co>"}
	got, err := PersonaPromptBuilder{}.SystemPrompt(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "You are {{.Role}}, a CTO.") || !strings.Contains(got, "Company: <Acme & Co>") {
		t.Fatalf("persona text must be inserted verbatim:\n%s", got)
	}
}

func TestGenerationPromptSections(t *testing.T) {
	a := domain.Archetype{ID: "cto", Name: "CTO", Count: 3, Description: "Tech lead"}

	got, err := PersonaPromptBuilder{}.GenerationPrompt(a, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "Key characteristics:") || strings.Contains(got, "Relevant context data:") {
		t.Fatalf("empty sections must be omitted:\n%s", got)
	}
	if !strings.Contains(got, "Return ONLY a JSON array of 3 persona objects.") {
		t.Fatalf("unexpected prompt:\n%s", got)
	}

	a.Characteristics = []string{"Pragmatic", "Security minded"}
	got, err = PersonaPromptBuilder{}.GenerationPrompt(a, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Key characteristics:\n- Pragmatic\n- Security minded\n") {
		t.Fatalf("expected characteristics bullets:\n%s", got)
	}
	if strings.Contains(got, "Relevant context data:") {
		t.Fatalf("empty context must be omitted:\n%s", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("ñandú", 3); got != "ñan" {
		t.Fatalf("expected rune-aware truncation, got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
