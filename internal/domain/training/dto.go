package training

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/cmlabs-hris/training-records-backend/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// CreateTrainingRequest is read from form fields; imgCert is an optional file part.
type CreateTrainingRequest struct {
	TrainingName  string
	Description   string
	TrainerName   string
	DateAttended  string
	DateCompleted string
	EmployeeID    string
	File          io.Reader
	FileHeader    *multipart.FileHeader
}

func (r *CreateTrainingRequest) Validate() error {
	var errs validator.ValidationErrors

	r.TrainingName = strings.TrimSpace(r.TrainingName)
	r.Description = strings.TrimSpace(r.Description)
	r.TrainerName = strings.TrimSpace(r.TrainerName)
	r.DateAttended = strings.TrimSpace(r.DateAttended)
	r.DateCompleted = strings.TrimSpace(r.DateCompleted)

	if validator.IsEmpty(r.TrainingName) {
		errs = append(errs, validator.ValidationError{
			Field:   "training_name",
			Message: "training_name is required",
		})
	} else if len(r.TrainingName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "training_name",
			Message: "training_name must not exceed 255 characters",
		})
	}

	if !validator.IsInSlice(r.Description, []string{string(StatusCompleted), string(StatusParticipation)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must be Completed or Participation",
		})
	}

	if validator.IsEmpty(r.TrainerName) {
		errs = append(errs, validator.ValidationError{
			Field:   "trainer_name",
			Message: "trainer_name is required",
		})
	} else if len(r.TrainerName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "trainer_name",
			Message: "trainer_name must not exceed 255 characters",
		})
	}

	attended, attendedOK := validator.IsValidDate(r.DateAttended)
	if !attendedOK {
		errs = append(errs, validator.ValidationError{
			Field:   "date_attended",
			Message: "date_attended must be in YYYY-MM-DD format",
		})
	}
	completed, completedOK := validator.IsValidDate(r.DateCompleted)
	if !completedOK {
		errs = append(errs, validator.ValidationError{
			Field:   "date_completed",
			Message: "date_completed must be in YYYY-MM-DD format",
		})
	}
	if attendedOK && completedOK && completed.Before(attended) {
		errs = append(errs, validator.ValidationError{
			Field:   "date_completed",
			Message: "date_completed cannot be before date_attended",
		})
	}

	if _, ok := validator.ParseID(r.EmployeeID); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a positive integer",
		})
	}

	if r.File != nil && (r.FileHeader == nil || validator.IsEmpty(r.FileHeader.Filename)) {
		errs = append(errs, validator.ValidationError{
			Field:   "imgCert",
			Message: "imgCert must have a file name",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Training converts a validated request; ImgCert is filled in after upload.
func (r *CreateTrainingRequest) Training() Training {
	attended, _ := validator.IsValidDate(r.DateAttended)
	completed, _ := validator.IsValidDate(r.DateCompleted)
	employeeID, _ := validator.ParseID(r.EmployeeID)

	return Training{
		Name:          r.TrainingName,
		Description:   Status(r.Description),
		TrainerName:   r.TrainerName,
		DateAttended:  attended,
		DateCompleted: completed,
		EmployeeID:    employeeID,
	}
}

// ===== RESPONSES =====

type TrainingResponse struct {
	TrainingID    int64   `json:"training_id"`
	TrainingName  string  `json:"training_name"`
	Description   string  `json:"description"`
	TrainerName   string  `json:"trainer_name"`
	DateAttended  string  `json:"date_attended"`
	DateCompleted string  `json:"date_completed"`
	EmployeeID    int64   `json:"employee_id"`
	ImgCert       *string `json:"imgCert"`
}

type TrainingWithEmployeeResponse struct {
	TrainingResponse
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
}

type CreateTrainingResponse struct {
	TrainingID int64   `json:"trainingId"`
	ImgCert    *string `json:"imgCert"`
}

func NewTrainingResponse(t Training) TrainingResponse {
	return TrainingResponse{
		TrainingID:    t.ID,
		TrainingName:  t.Name,
		Description:   string(t.Description),
		TrainerName:   t.TrainerName,
		DateAttended:  t.DateAttended.Format(dateLayout),
		DateCompleted: t.DateCompleted.Format(dateLayout),
		EmployeeID:    t.EmployeeID,
		ImgCert:       t.ImgCert,
	}
}

func NewTrainingResponses(records []Training) []TrainingResponse {
	result := make([]TrainingResponse, 0, len(records))
	for _, t := range records {
		result = append(result, NewTrainingResponse(t))
	}
	return result
}
