package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"device-inventory-backend/internal/model"
)

// GetDeviceStatus godoc
// @Summary      Get device online/offline status
// @Description  Sends one ICMP echo to the device when probing is enabled. Otherwise the device is reported offline.
// @Tags         Status
// @Produce      json
// @Param        id   path      string  true  "Device ID (24 hex characters)"
// @Success      200  {object}  model.DeviceStatus
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /devices/{id}/status [get]
func (h *Handler) GetDeviceStatus(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	d, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Failed to fetch device")
		return
	}

	status := model.StatusOffline
	if h.prober.Probe(c.Request.Context(), d.IPAddress) {
		status = model.StatusOnline
	}
	h.log.Debug("device probed", zap.String("id", d.ID), zap.String("ip", d.IPAddress), zap.String("status", status))

	c.JSON(http.StatusOK, model.DeviceStatus{
		ID:          d.ID,
		Status:      status,
		LastChecked: h.timestamp(),
	})
}
