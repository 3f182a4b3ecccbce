package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Store states reported by /health.
const (
	DatabaseOK            = "ok"
	DatabaseUnavailable   = "unavailable"
	DatabaseNotConfigured = "not_configured"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string         `json:"status" example:"ok"`
	Service  string         `json:"service" example:"device-inventory-api"`
	Version  string         `json:"version" example:"1.0.0"`
	Database DatabaseHealth `json:"database"`
}

// DatabaseHealth is the inline store connectivity probe.
type DatabaseHealth struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty"`
}

// Health godoc
// @Summary      Service health
// @Description  Always 200. The store probe result is reported inline.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Service:  h.opts.Service,
		Version:  h.opts.Version,
		Database: DatabaseHealth{Status: DatabaseNotConfigured},
	}

	if h.opts.StoreConfigured && h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.HealthTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			h.log.Warn("store ping failed", zap.Error(err))
			resp.Database = DatabaseHealth{Status: DatabaseUnavailable, Error: err.Error()}
		} else {
			resp.Database.Status = DatabaseOK
		}
	}

	c.JSON(http.StatusOK, resp)
}
