package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/domain/appointment"
	"github.com/dentavia/dentavia/internal/domain/message"
	"github.com/dentavia/dentavia/internal/domain/notification"
	"github.com/dentavia/dentavia/internal/domain/prescription"
	"github.com/dentavia/dentavia/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, appointment.ErrInterventionNotFound),
		errors.Is(err, appointment.ErrDocumentNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, message.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrSameDayConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "SAME_DAY_CONFLICT",
		})

	case errors.Is(err, service.ErrAlreadyDelegated),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, prescription.ErrPrescriptionCanceled):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrScheduledInPast),
		errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, appointment.ErrInvalidCaseType),
		errors.Is(err, appointment.ErrInvalidProcedure),
		errors.Is(err, service.ErrNotADoctor),
		errors.Is(err, service.ErrNotASecretary):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	// Wrong delegation state for the acting doctor is an ownership failure,
	// not a malformed request.
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNoPendingApplication),
		errors.Is(err, service.ErrNotAssigned),
		errors.Is(err, service.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}
