package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	LLMAPIKey     string `env:"LLM_API_KEY"`
	LLMBaseURL    string `env:"LLM_BASE_URL"`
	LLMModel      string `env:"LLM_MODEL" envDefault:"claude-sonnet-4-5-20250929"`
	PersonaModel  string `env:"PERSONA_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	InsightsModel string `env:"INSIGHTS_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	LLMMaxRetries int    `env:"LLM_MAX_RETRIES" envDefault:"2"`

	ExecutionConcurrency int           `env:"EXECUTION_CONCURRENCY" envDefault:"10"`
	ExecutionTimeout     time.Duration `env:"EXECUTION_TIMEOUT" envDefault:"120s"`
	MaxPersonas          int           `env:"MAX_PERSONAS" envDefault:"200"`
	InsightsEnabled      bool          `env:"INSIGHTS_ENABLED" envDefault:"true"`

	DatabaseURL string `env:"DATABASE_URL"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RunRateLimit  int           `env:"RUN_RATE_LIMIT" envDefault:"10"`
	RunRateWindow time.Duration `env:"RUN_RATE_WINDOW" envDefault:"1m"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AuthEnabled indica si las rutas de experimentos exigen bearer token.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }
