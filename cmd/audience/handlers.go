package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"synthetic-audience/internal/app"
	"synthetic-audience/internal/config"
	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/service"
)

func runExperimentCmd(cmd *cobra.Command, file string, verbose bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newCLILogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	req, err := loadRequest(file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.ExperimentID) == "" {
		req.ExperimentID = "cli-" + uuid.NewString()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return streamExperiment(ctx, cmd.OutOrStdout(), a.Experiments, req)
}

// newCLILogger escribe a stderr para no mezclar logs con el NDJSON de stdout.
func newCLILogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

// loadRequest lee el experimento; .json se decodifica como JSON y el resto como YAML.
func loadRequest(path string) (domain.ExperimentRequest, error) {
	var req domain.ExperimentRequest
	raw, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read experiment file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &req)
	default:
		err = yaml.Unmarshal(raw, &req)
	}
	if err != nil {
		return req, fmt.Errorf("parse experiment file %s: %w", path, err)
	}
	return req, nil
}

type experimentRunner interface {
	Run(ctx context.Context, req domain.ExperimentRequest) (domain.Experiment, <-chan domain.Event, error)
}

var _ experimentRunner = (*service.ExperimentService)(nil)

// streamExperiment escribe cada evento como una linea JSON. Devuelve error si el request es
// invalido o si el run termina con un evento de error.
func streamExperiment(ctx context.Context, out io.Writer, runner experimentRunner, req domain.ExperimentRequest) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exp, events, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	var failure error
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		if e, ok := ev.(domain.ErrorEvent); ok {
			failure = fmt.Errorf("experiment %s: %s", exp.ID, e.Message)
		}
	}
	if failure != nil {
		return failure
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("experiment %s interrupted: %w", exp.ID, err)
	}
	return nil
}

func runTokenCmd(cmd *cobra.Command, clientID string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.AuthEnabled() {
		return errors.New("JWT_SECRET is not set")
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	token, err := jwtSvc.Issue(clientID)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(token)
}
