package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
)

func parseMap(t *testing.T, vars map[string]string) *Config {
	t.Helper()
	cfg, err := parse(env.Options{Environment: vars})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := parseMap(t, map[string]string{})

	if cfg.HTTPPort != "8080" || cfg.LLMProvider != "anthropic" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExecutionConcurrency != 10 || cfg.ExecutionTimeout != 120*time.Second || cfg.MaxPersonas != 200 {
		t.Fatalf("unexpected execution defaults: %+v", cfg)
	}
	if !cfg.InsightsEnabled {
		t.Fatalf("expected insights enabled by default")
	}
	if cfg.AuthEnabled() {
		t.Fatalf("expected auth disabled without secret")
	}
	if cfg.RunRateWindow != time.Minute || cfg.RunRateLimit != 10 {
		t.Fatalf("unexpected rate limit defaults: %v / %d", cfg.RunRateWindow, cfg.RunRateLimit)
	}
	if cfg.PersonaModel != "claude-haiku-4-5-20251001" {
		t.Fatalf("unexpected persona model %q", cfg.PersonaModel)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg := parseMap(t, map[string]string{
		"EXECUTION_CONCURRENCY": "4",
		"EXECUTION_TIMEOUT":     "30s",
		"LLM_PROVIDER":          "openai",
		"JWT_SECRET":            "s3cret",
		"INSIGHTS_ENABLED":      "false",
	})

	if cfg.ExecutionConcurrency != 4 || cfg.ExecutionTimeout != 30*time.Second {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.LLMProvider != "openai" || !cfg.AuthEnabled() || cfg.InsightsEnabled {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	if _, err := parse(env.Options{Environment: map[string]string{"EXECUTION_TIMEOUT": "soon"}}); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
