package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"

	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
)

var personaIDPattern = regexp.MustCompile(`^vc-[0-9a-f]{8}$`)

func vcArchetype(count int) domain.Archetype {
	return domain.Archetype{
		ID:              "vc",
		Name:            "Seed VC Partner",
		Count:           count,
		Description:     "Early stage investor",
		Characteristics: []string{"Risk tolerant"},
	}
}

func TestLLMPersonaGeneratorParsesDrafts(t *testing.T) {
	client := &llm.MockClient{Response: "```json\n" + `[
		{"name": "Ana Ruiz", "role": "Partner", "company": "Acme Ventures", "background": "Ex founder.", "beliefs": ["Team first", "Speed"], "decision_style": "Fast."},
		{"name": "Tom Lee", "role": "Principal"}
	]` + "\n```"}

	gen := NewLLMPersonaGenerator(client, "claude-haiku", nil, zap.NewNop())
	personas, err := gen.Generate(context.Background(), []domain.Archetype{vcArchetype(2)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("expected 2 personas, got %d", len(personas))
	}

	ana := personas[0]
	if ana.Name != "Ana Ruiz" || ana.Company != "Acme Ventures" || ana.ArchetypeName != "Seed VC Partner" {
		t.Fatalf("unexpected persona: %+v", ana)
	}
	if ana.Beliefs != "- Team first\n- Speed" {
		t.Fatalf("expected list beliefs joined as bullets, got %q", ana.Beliefs)
	}
	if !personaIDPattern.MatchString(ana.ID) {
		t.Fatalf("unexpected persona id %q", ana.ID)
	}

	tom := personas[1]
	if tom.Company != "" || tom.Background != "" || tom.Role != "Principal" {
		t.Fatalf("missing fields must default to empty: %+v", tom)
	}
	if ana.ID == tom.ID {
		t.Fatalf("expected distinct ids")
	}

	calls := client.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one call per archetype, got %d", len(calls))
	}
	if calls[0].Model != "claude-haiku-4-5-20251001" || calls[0].MaxTokens != 4096 || calls[0].Temperature != 0.9 {
		t.Fatalf("unexpected generation request: %+v", calls[0])
	}
	if !strings.Contains(calls[0].Prompt, `Generate 2 unique, realistic personas for the archetype "Seed VC Partner"`) {
		t.Fatalf("unexpected prompt: %s", calls[0].Prompt)
	}
}

func TestLLMPersonaGeneratorFallbackOnGarbage(t *testing.T) {
	client := &llm.MockClient{Response: "Sorry, I cannot help with that."}
	gen := NewLLMPersonaGenerator(client, "", nil, zap.NewNop())

	personas, err := gen.Generate(context.Background(), []domain.Archetype{vcArchetype(3)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(personas) != 3 {
		t.Fatalf("expected 3 placeholders, got %d", len(personas))
	}
	for i, p := range personas {
		want := domain.Persona{
			ID:            p.ID,
			Name:          "Seed VC Partner #" + string(rune('1'+i)),
			Role:          "Seed VC Partner",
			ArchetypeID:   "vc",
			ArchetypeName: "Seed VC Partner",
			Company:       "Unknown",
			Background:    "Early stage investor",
			Beliefs:       "Makes data-driven decisions.",
			DecisionStyle: "Analytical and thorough.",
		}
		if p != want {
			t.Fatalf("placeholder %d: expected %+v, got %+v", i, want, p)
		}
	}
}

func TestLLMPersonaGeneratorFallbackOnBackendError(t *testing.T) {
	client := &llm.MockClient{Err: &llm.Error{Kind: llm.KindAPIError, Err: errors.New("status 529")}}
	gen := NewLLMPersonaGenerator(client, "", nil, zap.NewNop())

	a := vcArchetype(1)
	a.Description = ""
	personas, err := gen.Generate(context.Background(), []domain.Archetype{a}, nil)
	if err != nil {
		t.Fatalf("backend errors must degrade to placeholders, got %v", err)
	}
	if len(personas) != 1 || personas[0].Background != "A Seed VC Partner." {
		t.Fatalf("unexpected placeholder: %+v", personas)
	}
}

func TestLLMPersonaGeneratorTruncatesAndPads(t *testing.T) {
	client := &llm.MockClient{Response: `[{"name":"A"},{"name":"B"},{"name":"C"}]`}
	gen := NewLLMPersonaGenerator(client, "", nil, zap.NewNop())

	personas, err := gen.Generate(context.Background(), []domain.Archetype{vcArchetype(2)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(personas) != 2 || personas[1].Name != "B" {
		t.Fatalf("expected truncation to count, got %+v", personas)
	}

	personas, err = gen.Generate(context.Background(), []domain.Archetype{vcArchetype(5)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(personas) != 5 || personas[3].Name != "Seed VC Partner #4" || personas[4].Company != "Unknown" {
		t.Fatalf("expected padding with placeholders, got %+v", personas)
	}
}

func TestLLMPersonaGeneratorSkipsZeroCount(t *testing.T) {
	client := &llm.MockClient{Response: `[]`}
	gen := NewLLMPersonaGenerator(client, "", nil, zap.NewNop())

	personas, err := gen.Generate(context.Background(), []domain.Archetype{vcArchetype(0)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(personas) != 0 || len(client.Calls()) != 0 {
		t.Fatalf("expected no personas and no calls, got %d personas, %d calls", len(personas), len(client.Calls()))
	}
}

func TestLLMPersonaGeneratorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewLLMPersonaGenerator(&llm.MockClient{Response: `[]`}, "", nil, zap.NewNop())
	if _, err := gen.Generate(ctx, []domain.Archetype{vcArchetype(1)}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLLMPersonaGeneratorIncludesContextFiles(t *testing.T) {
	client := &llm.MockClient{Response: `[{"name":"A"}]`}
	gen := NewLLMPersonaGenerator(client, "", nil, zap.NewNop())

	files := []map[string]string{{"name": "pricing.md", "content": "Pro plan $49"}}
	if _, err := gen.Generate(context.Background(), []domain.Archetype{vcArchetype(1)}, files); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := client.Calls()[0].Prompt
	if !strings.Contains(prompt, "Relevant context data:") || !strings.Contains(prompt, "Pro plan $49") {
		t.Fatalf("expected context section in prompt: %s", prompt)
	}
}
