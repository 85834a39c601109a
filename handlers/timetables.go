package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"timetable-api/models"
	"timetable-api/services"

	"github.com/gin-gonic/gin"
)

type TimetableHandler struct {
	timetables *services.TimetableService
	exporter   services.TimetableExporter // nil when object storage is disabled
	cache      *services.CacheService
}

func NewTimetableHandler(timetables *services.TimetableService, exporter services.TimetableExporter, cache *services.CacheService) *TimetableHandler {
	return &TimetableHandler{
		timetables: timetables,
		exporter:   exporter,
		cache:      cache,
	}
}

// GenerateTimetables regenerates all generated lectures. Options come from
// the query string or a JSON body. A partial schedule answers 207.
func (h *TimetableHandler) GenerateTimetables(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}
	// Chunked bodies arrive with ContentLength -1, so test for the body itself.
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBindError(c, err)
			return
		}
	}

	schedule, err := h.timetables.Generate(c.Request.Context(), services.GenerateOptions{
		Deadline:   time.Duration(req.DeadlineMS) * time.Millisecond,
		StepBudget: req.StepBudget,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if schedule.Partial() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, schedule)
}

// GetTimetables returns the current grouping without regenerating.
func (h *TimetableHandler) GetTimetables(c *gin.Context) {
	tt, cached, err := h.timetables.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   tt,
		"cached": cached,
	})
}

func (h *TimetableHandler) ClearGenerated(c *gin.Context) {
	if err := h.timetables.ClearGenerated(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportTimetables uploads the current timetable and returns a download URL.
func (h *TimetableHandler) ExportTimetables(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:  "export_disabled",
			Detail: "object storage export is not configured",
		})
		return
	}

	tt, _, err := h.timetables.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.exporter.Export(c.Request.Context(), tt, c.DefaultQuery("format", "json"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TimetableHandler) InvalidateCache(c *gin.Context) {
	h.cache.Flush()
	c.JSON(http.StatusOK, gin.H{
		"message": "cache invalidated successfully",
	})
}
