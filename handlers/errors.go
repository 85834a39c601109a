package handlers

import (
	"errors"
	"net/http"

	"timetable-api/models"

	"github.com/gin-gonic/gin"
)

// respondError maps core errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrBookingConflict), errors.Is(err, models.ErrGenerationInProgress):
		status = http.StatusConflict
	}

	resp := models.ErrorResponse{
		Error:  models.ErrorKind(err),
		Detail: err.Error(),
	}
	var conflict *models.BookingConflict
	if errors.As(err, &conflict) {
		resp.Conflict = conflict
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, resp)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:  models.ErrorKind(models.ErrValidation),
		Detail: "invalid request body: " + err.Error(),
	})
}
