package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/repository"
)

// ArchetypeHandler lista el catalogo de arquetipos.
type ArchetypeHandler struct {
	logger     *zap.Logger
	archetypes repository.ArchetypeRepository
}

// NewArchetypeHandler acepta un repositorio nil (catalogo deshabilitado).
func NewArchetypeHandler(logger *zap.Logger, archetypes repository.ArchetypeRepository) *ArchetypeHandler {
	return &ArchetypeHandler{logger: logger, archetypes: archetypes}
}

// List maneja GET /archetypes.
func (h *ArchetypeHandler) List(c *gin.Context) {
	if h.archetypes == nil {
		c.JSON(http.StatusOK, gin.H{"archetypes": []domain.Archetype{}})
		return
	}

	list, err := h.archetypes.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list archetypes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list archetypes"})
		return
	}
	if list == nil {
		list = []domain.Archetype{}
	}
	c.JSON(http.StatusOK, gin.H{"archetypes": list})
}
