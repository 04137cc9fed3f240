package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/response"
)

type TrainingHandler interface {
	AddTraining(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
}

type trainingHandlerImpl struct {
	trainingService training.TrainingService
	maxUploadSize   int64
}

func NewTrainingHandler(trainingService training.TrainingService, maxUploadSize int64) TrainingHandler {
	return &trainingHandlerImpl{
		trainingService: trainingService,
		maxUploadSize:   maxUploadSize,
	}
}

// addTrainingJSON is the JSON form of the add-training fields, without a certificate.
type addTrainingJSON struct {
	TrainingName  string      `json:"training_name"`
	Description   string      `json:"description"`
	TrainerName   string      `json:"trainer_name"`
	DateAttended  string      `json:"date_attended"`
	DateCompleted string      `json:"date_completed"`
	EmployeeID    json.Number `json:"employee_id"`
}

// AddTraining implements TrainingHandler.
func (h *trainingHandlerImpl) AddTraining(w http.ResponseWriter, r *http.Request) {
	var req training.CreateTrainingRequest

	if isJSON(r) {
		var body addTrainingJSON
		if !decodeJSON(w, r, &body, maxJSONBody) {
			return
		}
		req = training.CreateTrainingRequest{
			TrainingName:  body.TrainingName,
			Description:   body.Description,
			TrainerName:   body.TrainerName,
			DateAttended:  body.DateAttended,
			DateCompleted: body.DateCompleted,
			EmployeeID:    body.EmployeeID.String(),
		}
	} else {
		if !parseUploadForm(w, r, h.maxUploadSize) {
			return
		}
		req = training.CreateTrainingRequest{
			TrainingName:  r.FormValue("training_name"),
			Description:   r.FormValue("description"),
			TrainerName:   r.FormValue("trainer_name"),
			DateAttended:  r.FormValue("date_attended"),
			DateCompleted: r.FormValue("date_completed"),
			EmployeeID:    r.FormValue("employee_id"),
		}

		file, fileHeader, err := r.FormFile("imgCert")
		switch {
		case err == nil:
			defer file.Close()
			req.File = file
			req.FileHeader = fileHeader
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		default:
			slog.Error("Failed to get file from form", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
	}

	res, err := h.trainingService.AddTraining(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{
		"trainingId": res.TrainingID,
		"imgCert":    res.ImgCert,
	})
}

// ListAll implements TrainingHandler.
func (h *trainingHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.trainingService.ListAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"trainingDetails": records})
}

// ListByEmployee implements TrainingHandler.
func (h *trainingHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.trainingService.ListByEmployee(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{"trainingDetails": records})
}
