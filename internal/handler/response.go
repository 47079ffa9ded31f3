package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

// OK writes a success envelope.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// Error maps an application error onto the HTTP surface. Expected
// business-rule outcomes keep their message; internal failures are
// masked behind a generic one.
func Error(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)

	var httpStatus int
	switch code {
	case apperrors.ErrNotFound:
		httpStatus = http.StatusNotFound
	case apperrors.ErrBadRequest, apperrors.ErrInvalidStatus, apperrors.ErrPastDate:
		httpStatus = http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		httpStatus = http.StatusForbidden
	case apperrors.ErrInvalidTransition, apperrors.ErrNotReschedulable,
		apperrors.ErrNoAvailabilityWindow, apperrors.ErrDoubleBooked,
		apperrors.ErrSlotContended, apperrors.ErrConcurrentUpdate:
		httpStatus = http.StatusConflict
	default:
		httpStatus = http.StatusInternalServerError
	}

	message := err.Error()
	if code == apperrors.ErrInternal {
		message = "internal server error"
	}

	c.JSON(httpStatus, gin.H{
		"status":  "error",
		"code":    code.String(),
		"message": message,
	})
}
