package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"synthetic-audience/internal/app"
	"synthetic-audience/internal/config"
	apihttp "synthetic-audience/internal/http"
	"synthetic-audience/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	shutdownTracing := observability.InitTracing(ctx, observability.TraceConfig{
		ServiceName: "synthetic-audience-api",
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init services", zap.Error(err))
	}
	defer a.Close()

	if !cfg.AuthEnabled() {
		logger.Warn("jwt secret not configured, experiment routes are unauthenticated")
	}

	experimentHandler := apihttp.NewExperimentHandler(logger, a.Experiments)
	archetypeHandler := apihttp.NewArchetypeHandler(logger, a.Archetypes)
	router := apihttp.NewRouter(logger, a.Registry, experimentHandler, archetypeHandler, a.AuthService(), a.RunLimiter)

	// Sin WriteTimeout: los runs largos mantienen la respuesta abierta.
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
