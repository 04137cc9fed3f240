package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/upload"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(w, "Insufficient role for this resource")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrUsernameExists):
		Conflict(w, "Username already exists")
	case errors.Is(err, employee.ErrInvalidEmployeeID):
		BadRequest(w, "Invalid employee id", nil)
	case errors.Is(err, employee.ErrPictureNotFound):
		ValidationError(w, map[string]string{"picture_filename": "picture_filename does not refer to a stored file"})

	// Training domain errors
	case errors.Is(err, training.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Upload errors
	case errors.Is(err, upload.ErrInvalidFileType):
		ValidationError(w, map[string]string{"file": err.Error()})
	case errors.Is(err, upload.ErrFileTooLarge):
		RequestEntityTooLarge(w, "File exceeds the upload size limit")
	case errors.Is(err, upload.ErrFileNotFound):
		NotFound(w, "File not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
