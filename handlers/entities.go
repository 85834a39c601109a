package handlers

import (
	"io"
	"net/http"
	"strings"

	"timetable-api/models"
	"timetable-api/services"

	"github.com/gin-gonic/gin"
)

// EntityHandler exposes the read-only entity snapshot.
type EntityHandler struct {
	ledger *services.Ledger
}

func NewEntityHandler(ledger *services.Ledger) *EntityHandler {
	return &EntityHandler{ledger: ledger}
}

func (h *EntityHandler) GetTeachers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.ledger.Snapshot().Teachers()})
}

func (h *EntityHandler) GetClasses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.ledger.Snapshot().Classes()})
}

func (h *EntityHandler) GetSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.ledger.Snapshot().Subjects()})
}

// GetClassSubjects lists the Demands.
func (h *EntityHandler) GetClassSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.ledger.Snapshot().Demands()})
}

// ReplaceSnapshot accepts a new snapshot from the administration layer.
// The body format follows Content-Type: JSON, YAML or an XLSX workbook.
func (h *EntityHandler) ReplaceSnapshot(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBindError(c, err)
		return
	}

	data, err := services.DecodeSnapshot(snapshotExt(c.ContentType()), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	snapshot, err := models.NewSnapshot(data)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.ledger.ReplaceSnapshot(c.Request.Context(), snapshot); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"teachers":       len(data.Teachers),
		"classes":        len(data.Classes),
		"subjects":       len(data.Subjects),
		"class_subjects": len(data.Demands),
	})
}

func snapshotExt(contentType string) string {
	switch {
	case strings.Contains(contentType, "yaml"):
		return ".yaml"
	case strings.Contains(contentType, "spreadsheetml"):
		return ".xlsx"
	case contentType == "" || strings.Contains(contentType, "json"):
		return ".json"
	default:
		return contentType
	}
}
