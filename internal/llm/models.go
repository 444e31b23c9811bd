package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultModel es el modelo usado cuando la peticion no indica uno.
const DefaultModel = "claude-sonnet-4-5-20250929"

var modelAliases = map[string]string{
	"claude-sonnet": "claude-sonnet-4-5-20250929",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// ResolveModel traduce alias cortos a identificadores completos; el resto pasa tal cual.
func ResolveModel(name string) string {
	name = strings.TrimSpace(name)
	if full, ok := modelAliases[name]; ok {
		return full
	}
	return name
}

// Provider selecciona el adaptador.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderMock      Provider = "mock"
)

// Options agrupa lo necesario para construir un cliente desde la configuracion.
type Options struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
}

// NewClient arma el adaptador pedido. "mock" devuelve un cliente con respuesta fija
// para correr el servicio sin credenciales.
func NewClient(opts Options, logger *zap.Logger) (LLMClient, error) {
	model := ResolveModel(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	switch Provider(strings.ToLower(opts.Provider)) {
	case ProviderAnthropic, "":
		return NewAnthropicClient(opts.APIKey, opts.BaseURL, model, opts.MaxRetries, logger), nil
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey, opts.BaseURL, model, logger), nil
	case ProviderMock:
		return &MockClient{Response: "Looks interesting and valuable, but I have some concerns."}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
