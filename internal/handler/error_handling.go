package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"fallen-dragon-server/shared/models"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenMalformed),
		errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, models.ErrUnknownPose):
		statusCode = http.StatusBadRequest
		message = "Pose does not exist"
	case errors.Is(err, models.ErrInvalidTransition):
		statusCode = http.StatusBadRequest
		message = "Requested act is not reachable from the current act"
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = "Invalid input data"
	case errors.Is(err, models.ErrSessionAlreadyCompleted):
		statusCode = http.StatusConflict
		message = "Session is already completed"
	case errors.Is(err, models.ErrConcurrentUpdate):
		statusCode = http.StatusConflict
		message = "Session was modified concurrently, reload and retry"
	case errors.Is(err, models.ErrSessionNotFound):
		statusCode = http.StatusNotFound
		message = "Session not found"
	case errors.Is(err, models.ErrStoryNotFound):
		statusCode = http.StatusNotFound
		message = "Story not found"
	case errors.Is(err, models.ErrActNotFound):
		statusCode = http.StatusNotFound
		message = "Act not found"
	case errors.Is(err, models.ErrCharacterNotFound):
		statusCode = http.StatusNotFound
		message = "Character not found"
	case errors.Is(err, models.ErrPoseNotFound):
		statusCode = http.StatusNotFound
		message = "Pose not found"
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Message: message})
}

func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Message: message})
}

// bindErrorMessage turns binding failures into a client message without
// leaking Go type names.
func bindErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid request body: %s failed on '%s'", fe.Field(), fe.Tag())
	}
	return "Invalid request body"
}
