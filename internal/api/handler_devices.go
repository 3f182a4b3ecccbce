package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"device-inventory-backend/internal/model"
	"device-inventory-backend/internal/parse"
)

// ListDevices godoc
// @Summary      List all devices
// @Tags         Devices
// @Produce      json
// @Success      200  {array}   model.DeviceResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /devices [get]
func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.store.List(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "Failed to fetch devices")
		return
	}

	resp := make([]model.DeviceResponse, 0, len(devices))
	for i := range devices {
		resp = append(resp, model.NewDeviceResponse(&devices[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateDevice godoc
// @Summary      Create a new device
// @Tags         Devices
// @Accept       json
// @Produce      json
// @Param        device  body      DeviceInput  true  "Device to create"
// @Success      201     {object}  model.DeviceResponse
// @Failure      400     {object}  model.ErrorResponse
// @Failure      401     {object}  model.ErrorResponse
// @Failure      500     {object}  model.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /devices [post]
func (h *Handler) CreateDevice(c *gin.Context) {
	fields, ok := h.bindDevice(c)
	if !ok {
		return
	}

	d := model.NewDevice(fields, h.timestamp())
	if err := h.store.Create(c.Request.Context(), d); err != nil {
		h.storeError(c, err, "Failed to create device")
		return
	}
	c.JSON(http.StatusCreated, model.NewDeviceResponse(d))
}

// GetDevice godoc
// @Summary      Get device by ID
// @Tags         Devices
// @Produce      json
// @Param        id   path      string  true  "Device ID (24 hex characters)"
// @Success      200  {object}  model.DeviceResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /devices/{id} [get]
func (h *Handler) GetDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	d, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "Failed to fetch device")
		return
	}
	c.JSON(http.StatusOK, model.NewDeviceResponse(d))
}

// UpdateDevice godoc
// @Summary      Update device by ID
// @Description  Replaces every mutable field. created_at is kept, updated_at is refreshed.
// @Tags         Devices
// @Accept       json
// @Produce      json
// @Param        id      path      string       true  "Device ID (24 hex characters)"
// @Param        device  body      DeviceInput  true  "Replacement fields"
// @Success      200     {object}  model.DeviceResponse
// @Failure      400     {object}  model.ErrorResponse
// @Failure      401     {object}  model.ErrorResponse
// @Failure      404     {object}  model.ErrorResponse
// @Failure      500     {object}  model.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /devices/{id} [put]
func (h *Handler) UpdateDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}
	fields, ok := h.bindDevice(c)
	if !ok {
		return
	}

	d, err := h.store.Update(c.Request.Context(), id, fields, h.timestamp())
	if err != nil {
		h.storeError(c, err, "Failed to update device")
		return
	}
	c.JSON(http.StatusOK, model.NewDeviceResponse(d))
}

// DeleteDevice godoc
// @Summary      Delete device by ID
// @Tags         Devices
// @Param        id   path  string  true  "Device ID (24 hex characters)"
// @Success      204  "No Content"
// @Failure      400  {object}  model.ErrorResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /devices/{id} [delete]
func (h *Handler) DeleteDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.storeError(c, err, "Failed to delete device")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeviceInput documents the create/update request body.
type DeviceInput struct {
	Name       string `json:"name" example:"core-switch-1"`
	IPAddress  string `json:"ip_address" example:"10.0.0.1"`
	MACAddress string `json:"mac_address" example:"AA:BB:CC:DD:EE:FF"`
	Location   string `json:"location" example:"rack1"`
	Type       string `json:"type" example:"switch"`
}

// deviceID validates the :id path parameter, writing INVALID_ID on failure.
func deviceID(c *gin.Context) (string, bool) {
	id, err := parse.ObjectID(c.Param("id"))
	if err != nil {
		invalidID(c)
		return "", false
	}
	return id, true
}

// bindDevice reads and validates the request body, writing the error
// envelope on failure.
func (h *Handler) bindDevice(c *gin.Context) (model.DeviceFields, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		details := ""
		if errors.As(err, &tooLarge) {
			details = "request body too large"
		}
		abortError(c, http.StatusBadRequest, model.CodeBadRequest, "Bad request", details)
		return model.DeviceFields{}, false
	}

	fields, err := parse.Device(body)
	if err != nil {
		abortError(c, http.StatusBadRequest, model.CodeValidationError, "Invalid input", err.Error())
		return model.DeviceFields{}, false
	}
	return fields, true
}
