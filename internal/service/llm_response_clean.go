package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"synthetic-audience/internal/domain"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// BOM (por si acaso)
	s = strings.TrimPrefix(s, "\uFEFF")

	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Decoded es el resultado de decodificar texto del LLM: o se parseo, o hay que usar el fallback.
// Con OutcomeFallback, Value es el cero de T y no debe usarse.
type Decoded[T any] struct {
	Value   T
	Outcome domain.ParseOutcome
}

func (d Decoded[T]) Parsed() bool { return d.Outcome == domain.OutcomeParsed }

// decodeLLMJSON intenta el texto limpio completo y, si falla, el primer valor JSON balanceado
// que abra con open ('{' o '[').
func decodeLLMJSON[T any](raw string, open byte) Decoded[T] {
	cleaned := cleanLLMJSONResponse(raw)
	if cleaned == "" {
		return Decoded[T]{Outcome: domain.OutcomeFallback}
	}

	var v T
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return Decoded[T]{Value: v, Outcome: domain.OutcomeParsed}
	}

	candidate := extractFirstJSON(cleaned, open)
	if candidate == "" {
		return Decoded[T]{Outcome: domain.OutcomeFallback}
	}
	var retry T
	if err := json.Unmarshal([]byte(candidate), &retry); err != nil {
		return Decoded[T]{Outcome: domain.OutcomeFallback}
	}
	return Decoded[T]{Value: retry, Outcome: domain.OutcomeParsed}
}
