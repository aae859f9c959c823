package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a dependency's connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	BaseHandler
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		BaseHandler: BaseHandler{logger: logger},
		db:          db,
		timeout:     2 * time.Second,
	}
}

// Health answers 200 when the database is reachable and 503 otherwise
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    dto.HealthResponse{Status: "unavailable", Database: "down"},
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "Database unreachable"},
		})
		return
	}
	h.Success(c, dto.HealthResponse{Status: "ok", Database: "up"})
}
