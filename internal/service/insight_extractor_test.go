package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
)

func resultFor(archetype string, sentiment float64, response string) domain.ExecutionResult {
	return domain.ExecutionResult{
		PersonaName:   archetype + " persona",
		ArchetypeName: archetype,
		Response:      &response,
		Sentiment:     sentiment,
	}
}

func failedFor(archetype string) domain.ExecutionResult {
	msg := "timeout: no response within 1s"
	return domain.ExecutionResult{ArchetypeName: archetype, Error: &msg}
}

func TestLLMInsightExtractorParsed(t *testing.T) {
	client := &llm.MockClient{Response: "```json\n" + `{
		"themes": [{"theme": "Pricing", "count": 2, "examples": ["too expensive"]}],
		"recommendations": ["Offer a starter tier"],
		"archetype_patterns": {"VC": {"avg_sentiment": 0.4, "key_themes": ["Pricing"]}}
	}` + "\n```"}

	ex := NewLLMInsightExtractor(client, "", nil, zap.NewNop())
	got := ex.Extract(context.Background(), "Pricing page", []domain.ExecutionResult{
		resultFor("VC", 0.5, "Looks good"),
		resultFor("VC", 0.3, "Maybe"),
	})

	if got.Source != domain.OutcomeParsed {
		t.Fatalf("expected parsed outcome, got %q", got.Source)
	}
	if len(got.Themes) != 1 || got.Themes[0].Theme != "Pricing" || got.Themes[0].Count != 2 {
		t.Fatalf("unexpected themes: %+v", got.Themes)
	}
	if got.Concerns == nil || len(got.Concerns) != 0 {
		t.Fatalf("missing concerns key must default to empty list, got %+v", got.Concerns)
	}
	if got.ArchetypePatterns["VC"].AvgSentiment != 0.4 {
		t.Fatalf("unexpected patterns: %+v", got.ArchetypePatterns)
	}

	call := client.Calls()[0]
	if call.Model != InsightsDefaultModel || call.MaxTokens != 2048 || call.Temperature != 0.3 {
		t.Fatalf("unexpected request: %+v", call)
	}
}

func TestLLMInsightExtractorFallbackOnError(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("connection refused")}
	ex := NewLLMInsightExtractor(client, "", nil, zap.NewNop())

	got := ex.Extract(context.Background(), "x", []domain.ExecutionResult{
		resultFor("VC", 0.5, "a"),
		resultFor("VC", 0.25, "b"),
		resultFor("CTO", -1, "c"),
		failedFor("CFO"),
	})

	if got.Source != domain.OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %q", got.Source)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0] != fallbackRecommendation {
		t.Fatalf("unexpected recommendations: %+v", got.Recommendations)
	}
	if len(got.ArchetypePatterns) != 2 {
		t.Fatalf("expected patterns only for archetypes with successes, got %+v", got.ArchetypePatterns)
	}
	if got.ArchetypePatterns["VC"].AvgSentiment != 0.375 || got.ArchetypePatterns["CTO"].AvgSentiment != -1 {
		t.Fatalf("unexpected averages: %+v", got.ArchetypePatterns)
	}
	if got.ArchetypePatterns["VC"].KeyThemes == nil {
		t.Fatalf("expected empty key themes list")
	}
}

func TestLLMInsightExtractorFallbackOnGarbage(t *testing.T) {
	client := &llm.MockClient{Response: "no json here"}
	ex := NewLLMInsightExtractor(client, "", nil, zap.NewNop())
	got := ex.Extract(context.Background(), "x", []domain.ExecutionResult{resultFor("VC", 0.5, "a")})
	if got.Source != domain.OutcomeFallback {
		t.Fatalf("expected fallback, got %q", got.Source)
	}
}

func TestLLMInsightExtractorNoSuccesses(t *testing.T) {
	client := &llm.MockClient{Response: "{}"}
	ex := NewLLMInsightExtractor(client, "", nil, zap.NewNop())

	got := ex.Extract(context.Background(), "x", []domain.ExecutionResult{failedFor("VC")})
	if len(got.Themes) != 0 || len(got.Recommendations) != 0 || len(got.ArchetypePatterns) != 0 {
		t.Fatalf("expected empty insights, got %+v", got)
	}
	if len(client.Calls()) != 0 {
		t.Fatalf("expected no backend call without successful results")
	}
}

func TestLLMInsightExtractorTruncatesInputs(t *testing.T) {
	client := &llm.MockClient{Response: "{}"}
	ex := NewLLMInsightExtractor(client, "", nil, zap.NewNop())

	long := strings.Repeat("x", 1500)
	stimulus := strings.Repeat("s", 700)
	ex.Extract(context.Background(), stimulus, []domain.ExecutionResult{resultFor("VC", 0, long)})

	prompt := client.Calls()[0].Prompt
	if strings.Contains(prompt, strings.Repeat("x", 1001)) {
		t.Fatalf("expected response truncated to 1000 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 1000)) {
		t.Fatalf("expected truncated response in prompt")
	}
	if strings.Contains(prompt, strings.Repeat("s", 501)) {
		t.Fatalf("expected stimulus truncated to 500 characters")
	}
}
