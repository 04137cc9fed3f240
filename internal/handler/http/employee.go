package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	ListEmployees(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	GetEmployeeDetail(w http.ResponseWriter, r *http.Request)
	ViewEmployeeProfile(w http.ResponseWriter, r *http.Request)
	CreateEmployee(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	UploadAvatar(w http.ResponseWriter, r *http.Request)
	UpdatePicture(w http.ResponseWriter, r *http.Request)
	DeleteEmployee(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
	maxUploadSize   int64
}

func NewEmployeeHandler(employeeService employee.EmployeeService, maxUploadSize int64) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeService: employeeService,
		maxUploadSize:   maxUploadSize,
	}
}

// employeeIDParam reads {employeeId} from the route
func employeeIDParam(r *http.Request) (int64, error) {
	id, ok := validator.ParseID(chi.URLParam(r, "employeeId"))
	if !ok {
		return 0, employee.ErrInvalidEmployeeID
	}
	return id, nil
}

// ListEmployees implements EmployeeHandler. The body is a bare array.
func (h *employeeHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.ListEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, employees)
}

// GetEmployee implements EmployeeHandler.
func (h *employeeHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	res, err := h.employeeService.GetEmployee(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{
		"employee": res.Employee,
		"training": res.Training,
	})
}

// GetEmployeeDetail implements EmployeeHandler.
func (h *employeeHandlerImpl) GetEmployeeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	res, err := h.employeeService.GetEmployeeDetail(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"employeeDetails": res})
}

// ViewEmployeeProfile implements EmployeeHandler.
func (h *employeeHandlerImpl) ViewEmployeeProfile(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	res, err := h.employeeService.ViewEmployeeProfile(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{
		"employeeDetails": res.EmployeeDetails,
		"trainingDetails": res.TrainingDetails,
	})
}

// CreateEmployee implements EmployeeHandler.
func (h *employeeHandlerImpl) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, &req, maxJSONBody) {
		return
	}

	res, err := h.employeeService.CreateEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"employeeId": res.EmployeeID})
}

// UpdateProfile implements EmployeeHandler.
func (h *employeeHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req employee.UpdateProfileRequest
	if !decodeJSON(w, r, &req, maxJSONBody) {
		return
	}
	req.EmployeeID = id

	if err := h.employeeService.UpdateProfile(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"message": "Profile updated"})
}

// UploadAvatar implements EmployeeHandler.
// A form without an "image" part clears the picture.
func (h *employeeHandlerImpl) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !parseUploadForm(w, r, h.maxUploadSize) {
		return
	}

	req := employee.UploadAvatarRequest{EmployeeID: id}
	file, fileHeader, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		req.File = file
		req.FileHeader = fileHeader
	case errors.Is(err, http.ErrMissingFile):
	default:
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	res, err := h.employeeService.UploadAvatar(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"picture_filename": res.PictureFilename})
}

// UpdatePicture implements EmployeeHandler.
func (h *employeeHandlerImpl) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req employee.UpdatePictureRequest
	if !decodeJSON(w, r, &req, inlineRefLimit(h.maxUploadSize)) {
		return
	}
	req.EmployeeID = id

	res, err := h.employeeService.UpdatePicture(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"picture_filename": res.PictureFilename})
}

// DeleteEmployee implements EmployeeHandler.
func (h *employeeHandlerImpl) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.employeeService.DeleteEmployee(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"message": "Employee deleted"})
}

// Me implements EmployeeHandler.
func (h *employeeHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if claims.EmployeeID == nil {
		response.HandleError(w, auth.ErrForbidden)
		return
	}

	res, err := h.employeeService.GetEmployeeDetail(r.Context(), *claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"employeeDetails": res})
}
