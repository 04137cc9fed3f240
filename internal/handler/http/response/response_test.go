package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/upload"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_MergesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, Fields{"employeeId": 7})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"employeeId":7}`, rec.Body.String())
}

func TestJSON_NoEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, []int{})

	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{validator.ValidationErrors{{Field: "a", Message: "b"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{auth.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("wrapped: %w", employee.ErrEmployeeNotFound), http.StatusNotFound, "NOT_FOUND"},
		{employee.ErrUsernameExists, http.StatusConflict, "CONFLICT"},
		{employee.ErrInvalidEmployeeID, http.StatusBadRequest, "BAD_REQUEST"},
		{employee.ErrPictureNotFound, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{training.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{upload.ErrInvalidFileType, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{upload.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{errors.New("connection refused to 10.0.0.5"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandleError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pq: password authentication failed for user app"))

	assert.NotContains(t, rec.Body.String(), "password authentication")
}
