package handlers

import (
	"net/http"

	"timetable-api/models"
	"timetable-api/services"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	booking *services.BookingService
	ledger  *services.Ledger
}

func NewBookingHandler(booking *services.BookingService, ledger *services.Ledger) *BookingHandler {
	return &BookingHandler{
		booking: booking,
		ledger:  ledger,
	}
}

// GetBookedLectures lists every booked lecture, manual and generated.
func (h *BookingHandler) GetBookedLectures(c *gin.Context) {
	lectures, err := h.ledger.Lectures(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if lectures == nil {
		lectures = []models.BookedLecture{}
	}
	c.JSON(http.StatusOK, gin.H{"data": lectures})
}

// BookSlot places a single manual lecture.
func (h *BookingHandler) BookSlot(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	lecture, err := h.booking.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lecture)
}

// CancelBooking removes a manual lecture.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	if err := h.booking.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
