package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/service"
)

const ndjsonContentType = "application/x-ndjson"

// ExperimentRunner es lo que el handler necesita del orquestador.
type ExperimentRunner interface {
	Prepare(ctx context.Context, req domain.ExperimentRequest) (domain.Experiment, error)
	Stream(ctx context.Context, exp domain.Experiment) <-chan domain.Event
}

// ExperimentHandler expone POST /experiments/run como stream NDJSON.
type ExperimentHandler struct {
	logger      *zap.Logger
	experiments ExperimentRunner
}

func NewExperimentHandler(logger *zap.Logger, experiments ExperimentRunner) *ExperimentHandler {
	return &ExperimentHandler{logger: logger, experiments: experiments}
}

var _ ExperimentRunner = (*service.ExperimentService)(nil)

// Run maneja POST /experiments/run. Un request invalido responde 400 antes de despachar nada;
// a partir de ahi cada evento sale como una linea JSON en cuanto se produce.
func (h *ExperimentHandler) Run(c *gin.Context) {
	var req domain.ExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid experiment request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	exp, err := h.experiments.Prepare(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.logger.Warn("experiment request rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("prepare experiment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start experiment"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	header := c.Writer.Header()
	header.Set("Content-Type", ndjsonContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("X-Experiment-Id", exp.ID)
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	for ev := range h.experiments.Stream(ctx, exp) {
		if err := enc.Encode(ev); err != nil {
			// cancel() libera al orquestador; el resto del stream se descarta
			h.logger.Info("experiment stream write failed",
				zap.String("experiment_id", exp.ID),
				zap.Error(err),
			)
			return
		}
		c.Writer.Flush()
	}
}
