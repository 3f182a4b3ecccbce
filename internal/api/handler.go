package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"device-inventory-backend/internal/model"
	"device-inventory-backend/internal/probe"
	"device-inventory-backend/internal/store"
)

// maxBodyBytes bounds create/update request bodies.
const maxBodyBytes = 1 << 20

// Options carries the settings handlers read at request time.
type Options struct {
	Service string
	Version string
	// StoreConfigured is false when no store connection settings were
	// given; /health then skips the connectivity probe.
	StoreConfigured bool
	HealthTimeout   time.Duration
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	prober probe.Prober
	log    *zap.Logger
	opts   Options
	now    func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, p probe.Prober, log *zap.Logger, opts Options) *Handler {
	if p == nil {
		p = probe.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = time.Second
	}
	return &Handler{
		store:  s,
		prober: p,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

// timestamp is the current time as stored: UTC, millisecond precision.
func (h *Handler) timestamp() time.Time {
	return h.now().UTC().Truncate(time.Millisecond)
}

func abortError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{
		ErrorCode: code,
		Message:   message,
		Details:   details,
	})
}

func invalidID(c *gin.Context) {
	abortError(c, http.StatusBadRequest, model.CodeInvalidID, "Invalid device ID", "")
}

func notFound(c *gin.Context) {
	abortError(c, http.StatusNotFound, model.CodeNotFound, "Device not found", "")
}

// storeError turns a store failure into the matching envelope. message is
// used for DB_ERROR.
func (h *Handler) storeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		notFound(c)
	case errors.Is(err, store.ErrDuplicate):
		abortError(c, http.StatusBadRequest, model.CodeDuplicate, "MAC address must be unique", "")
	default:
		_ = c.Error(err)
		h.log.Warn("store operation failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		abortError(c, http.StatusInternalServerError, model.CodeDBError, message, err.Error())
	}
}
