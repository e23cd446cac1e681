package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mabenj/IoT-Platform/internal/application/usecase"
	"github.com/mabenj/IoT-Platform/internal/domain"
)

type DeviceDataHandler struct {
	useCase *usecase.DeviceDataUseCase
	log     zerolog.Logger
}

func NewDeviceDataHandler(uc *usecase.DeviceDataUseCase, log zerolog.Logger) *DeviceDataHandler {
	return &DeviceDataHandler{useCase: uc, log: log}
}

type paginationResponse struct {
	CurrentCount int   `json:"currentCount"`
	TotalCount   int64 `json:"totalCount"`
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type pageResponse struct {
	Pagination paginationResponse        `json:"pagination"`
	Items      []domain.DeviceDataRecord `json:"items"`
}

type rangeResponse struct {
	Count int                       `json:"count"`
	Items []domain.DeviceDataRecord `json:"items"`
}

// GET /deviceData/:id?page=N
func (h *DeviceDataHandler) Page(c *gin.Context) {
	deviceID, ok := deviceIDParam(c)
	if !ok {
		return
	}
	pageNumber, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		badRequest(c, "page must be an integer")
		return
	}

	page, err := h.useCase.Page(c, deviceID, pageNumber)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse{
		Pagination: paginationResponse{
			CurrentCount: len(page.Items),
			TotalCount:   page.TotalCount,
			CurrentPage:  page.CurrentPage,
			TotalPages:   page.TotalPages,
			ItemsPerPage: page.ItemsPerPage,
		},
		Items: page.Items,
	})
}

// GET /deviceData/:id/range?start=<ms>&end=<ms>
func (h *DeviceDataHandler) Range(c *gin.Context) {
	deviceID, ok := deviceIDParam(c)
	if !ok {
		return
	}
	start, end, ok := windowParams(c)
	if !ok {
		return
	}

	records, err := h.useCase.Range(c, deviceID, start, end)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rangeResponse{Count: len(records), Items: records})
}

// GET /deviceData/:id/timeSeries?start=<ms>&end=<ms>
func (h *DeviceDataHandler) TimeSeries(c *gin.Context) {
	deviceID, ok := deviceIDParam(c)
	if !ok {
		return
	}
	start, end, ok := windowParams(c)
	if !ok {
		return
	}

	ts, err := h.useCase.TimeSeries(c, deviceID, start, end)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

// GET /deviceData/:id/exportJson
func (h *DeviceDataHandler) Export(c *gin.Context) {
	deviceID, ok := deviceIDParam(c)
	if !ok {
		return
	}

	doc, filename, err := h.useCase.Export(c, deviceID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", doc)
}

// DELETE /deviceData/:id
func (h *DeviceDataHandler) DeleteAll(c *gin.Context) {
	deviceID, ok := deviceIDParam(c)
	if !ok {
		return
	}

	if _, err := h.useCase.DeleteAll(c, deviceID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func deviceIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid device id")
		return uuid.Nil, false
	}
	return id, true
}

// windowParams reads start and end as epoch milliseconds.
func windowParams(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		badRequest(c, "start must be epoch milliseconds")
		return time.Time{}, time.Time{}, false
	}
	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		badRequest(c, "end must be epoch milliseconds")
		return time.Time{}, time.Time{}, false
	}
	return time.UnixMilli(start).UTC(), time.UnixMilli(end).UTC(), true
}
