package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/application/usecase"
	"github.com/mabenj/IoT-Platform/internal/domain"
)

type DeviceHandler struct {
	useCase *usecase.DeviceUseCase
	log     zerolog.Logger
}

func NewDeviceHandler(uc *usecase.DeviceUseCase, log zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{useCase: uc, log: log}
}

type timeSeriesConfigReq struct {
	ValueField  string `json:"valueField" binding:"required"`
	DisplayName string `json:"displayName"`
	Unit        string `json:"unit"`
}

type deviceReq struct {
	Name                     string                `json:"name" binding:"required,max=100"`
	AccessToken              string                `json:"accessToken" binding:"required,alphanum,min=8,max=64"`
	Enabled                  bool                  `json:"enabled"`
	Protocol                 string                `json:"protocol" binding:"required,oneof=http coap"`
	Description              string                `json:"description"`
	HasTimeSeries            bool                  `json:"hasTimeSeries"`
	TimeSeriesConfigurations []timeSeriesConfigReq `json:"timeSeriesConfigurations" binding:"max=2,dive"`
}

func (r deviceReq) toDomain() *domain.Device {
	configs := make([]domain.TimeSeriesConfiguration, 0, len(r.TimeSeriesConfigurations))
	for _, c := range r.TimeSeriesConfigurations {
		configs = append(configs, domain.TimeSeriesConfiguration{
			ValueField:  c.ValueField,
			DisplayName: c.DisplayName,
			Unit:        c.Unit,
		})
	}
	return &domain.Device{
		Name:                     r.Name,
		AccessToken:              r.AccessToken,
		Enabled:                  r.Enabled,
		Protocol:                 domain.Protocol(r.Protocol),
		Description:              r.Description,
		HasTimeSeries:            r.HasTimeSeries,
		TimeSeriesConfigurations: configs,
	}
}

// GET /devices
func (h *DeviceHandler) List(c *gin.Context) {
	devices, err := h.useCase.List(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

// GET /devices/:id
func (h *DeviceHandler) GetOne(c *gin.Context) {
	id, ok := deviceIDParam(c)
	if !ok {
		return
	}
	device, err := h.useCase.Get(c, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// POST /devices
func (h *DeviceHandler) Create(c *gin.Context) {
	var req deviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	device := req.toDomain()
	if err := h.useCase.Create(c, device); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

// PUT /devices/:id
func (h *DeviceHandler) Update(c *gin.Context) {
	id, ok := deviceIDParam(c)
	if !ok {
		return
	}
	var req deviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	device := req.toDomain()
	device.ID = id
	if err := h.useCase.Update(c, device); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// DELETE /devices/:id
func (h *DeviceHandler) Delete(c *gin.Context) {
	id, ok := deviceIDParam(c)
	if !ok {
		return
	}
	if err := h.useCase.Remove(c, id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
