package transport

import (
	"errors"
	"net/http"

	"github.com/anna199/TeachTogether/internal/entity"
	"github.com/anna199/TeachTogether/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Something went wrong!"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Message string                  `json:"message"`
	Errors  []entity.FieldViolation `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps domain errors to status codes. Anything unclassified is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *entity.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: verr.Error(), Errors: verr.Violations})
	case errors.Is(err, entity.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Event not found"})
	case errors.Is(err, entity.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Registration not found"})
	case errors.Is(err, entity.ErrEventFull):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Event is full"})
	default:
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("Request failed with internal error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: internalErrorMessage})
	}
}

func respondBadBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Invalid request body",
		Errors:  []entity.FieldViolation{{Field: "body", Rule: "json", Message: err.Error()}},
	})
}
