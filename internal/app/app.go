package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"synthetic-audience/internal/config"
	"synthetic-audience/internal/db"
	"synthetic-audience/internal/llm"
	"synthetic-audience/internal/observability"
	"synthetic-audience/internal/repository"
	"synthetic-audience/internal/service"
)

// App agrupa los servicios armados desde la configuracion. Lo comparten la API y el CLI.
type App struct {
	Config      *config.Config
	Registry    *prometheus.Registry
	Metrics     *observability.Metrics
	Archetypes  repository.ArchetypeRepository
	Experiments *service.ExperimentService
	JWT         *service.JWTService
	RunLimiter  service.RunLimiter

	closers []func()
}

// New arma el grafo de dependencias. Postgres y Redis son opcionales: sin DATABASE_URL el
// catalogo vive en memoria y sin REDIS_ADDR no hay rate limit.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = observability.NewMetrics(a.Registry)

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := db.EnsureSchema(ctx, pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("db schema: %w", err)
		}
		a.Archetypes = repository.NewPgArchetypeRepository(pool)
	} else {
		logger.Info("database not configured, using in-memory archetype catalog")
		a.Archetypes = repository.NewMemoryArchetypeRepository()
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			a.RunLimiter = service.NewRedisRunLimiter(redisClient, cfg.RunRateWindow, cfg.RunRateLimit, a.Metrics, logger)
		}
		cancel()
	}

	a.JWT = service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	client, err := llm.NewClient(llm.Options{
		Provider:   cfg.LLMProvider,
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Model:      cfg.LLMModel,
		MaxRetries: cfg.LLMMaxRetries,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("llm client: %w", err)
	}

	var insights service.InsightExtractor
	if cfg.InsightsEnabled {
		insights = service.NewLLMInsightExtractor(client, cfg.InsightsModel, a.Metrics, logger)
	}

	a.Experiments = service.NewExperimentService(
		service.NewLLMPersonaGenerator(client, cfg.PersonaModel, a.Metrics, logger),
		service.NewExecutor(client, cfg.ExecutionConcurrency, a.Metrics, logger),
		insights,
		a.Archetypes,
		service.ExperimentSettings{
			MaxPersonas:    cfg.MaxPersonas,
			DefaultTimeout: cfg.ExecutionTimeout,
			DefaultModel:   cfg.LLMModel,
		},
		a.Metrics,
		logger,
	)
	return a, nil
}

// AuthService devuelve el servicio JWT solo si hay secreto configurado.
func (a *App) AuthService() *service.JWTService {
	if !a.Config.AuthEnabled() {
		return nil
	}
	return a.JWT
}

// Close libera conexiones en orden inverso.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
