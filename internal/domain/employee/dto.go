package employee

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	FirstName  string               `json:"firstName"`
	LastName   string               `json:"lastName"`
	MiddleName string               `json:"middleName"`
	Position   string               `json:"position"`
	Profile    CreateProfileRequest `json:"profile"`
}

type CreateProfileRequest struct {
	Username string `json:"username"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.Position = strings.TrimSpace(r.Position)
	r.Profile.Username = strings.TrimSpace(r.Profile.Username)

	required := []struct {
		field string
		value string
	}{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"middleName", r.MiddleName},
		{"position", r.Position},
	}
	for _, f := range required {
		if validator.IsEmpty(f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " is required",
			})
		} else if len(f.value) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " must not exceed 100 characters",
			})
		}
	}

	if validator.IsEmpty(r.Profile.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "profile.username",
			Message: "profile.username is required",
		})
	} else if !validator.IsValidUsername(r.Profile.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "profile.username",
			Message: "profile.username must be 3-50 characters of letters, numbers, dots, underscores, or hyphens",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LooseInt accepts a JSON number, a numeric string, an empty string or null.
// Form inputs send numbers as strings.
type LooseInt struct {
	Value   *int
	invalid bool
}

func (l *LooseInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	l.Value, l.invalid = nil, false
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.invalid = true
		return nil
	}
	l.Value = &n
	return nil
}

// UpdateProfileRequest replaces all contact fields; omitted or empty fields are cleared.
type UpdateProfileRequest struct {
	EmployeeID   int64    `json:"-"`
	Birthday     *string  `json:"birthday"`
	Office       *string  `json:"office"`
	Religion     *string  `json:"religion"`
	Email        *string  `json:"email"`
	Age          LooseInt `json:"age"`
	MobileNumber *string  `json:"mobile_number"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Birthday = blankToNil(r.Birthday)
	r.Office = blankToNil(r.Office)
	r.Religion = blankToNil(r.Religion)
	r.Email = blankToNil(r.Email)
	r.MobileNumber = blankToNil(r.MobileNumber)

	if r.Birthday != nil {
		birthday, ok := validator.IsValidDate(*r.Birthday)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "birthday",
				Message: "birthday must be in YYYY-MM-DD format",
			})
		} else if birthday.After(time.Now()) {
			errs = append(errs, validator.ValidationError{
				Field:   "birthday",
				Message: "birthday cannot be in the future",
			})
		}
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.Age.invalid {
		errs = append(errs, validator.ValidationError{
			Field:   "age",
			Message: "age must be a whole number",
		})
	} else if r.Age.Value != nil && (*r.Age.Value < 0 || *r.Age.Value > 150) {
		errs = append(errs, validator.ValidationError{
			Field:   "age",
			Message: "age must be between 0 and 150",
		})
	}
	if r.MobileNumber != nil && !validator.IsValidPhoneNumber(*r.MobileNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "mobile_number",
			Message: "mobile_number must be 7-20 digits, optionally with spaces, dashes, or a leading +",
		})
	}
	for field, value := range map[string]*string{"office": r.Office, "religion": r.Religion} {
		if value != nil && len(*value) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must not exceed 100 characters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ContactDetails converts a validated request.
func (r *UpdateProfileRequest) ContactDetails() ContactDetails {
	details := ContactDetails{
		Office:       r.Office,
		Religion:     r.Religion,
		Email:        r.Email,
		Age:          r.Age.Value,
		MobileNumber: r.MobileNumber,
	}
	if r.Birthday != nil {
		if birthday, ok := validator.IsValidDate(*r.Birthday); ok {
			details.Birthday = &birthday
		}
	}
	return details
}

// UploadAvatarRequest carries the multipart "image" part. File is nil when the
// form had no image, which clears the picture.
type UploadAvatarRequest struct {
	EmployeeID int64
	File       io.Reader
	FileHeader *multipart.FileHeader
}

func (r *UploadAvatarRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File != nil {
		if r.FileHeader == nil || validator.IsEmpty(r.FileHeader.Filename) {
			errs = append(errs, validator.ValidationError{
				Field:   "image",
				Message: "image must have a file name",
			})
		} else if r.FileHeader.Size == 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "image",
				Message: "image must not be empty",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePictureRequest points the profile at an already stored file, or clears it.
type UpdatePictureRequest struct {
	EmployeeID      int64   `json:"-"`
	PictureFilename *string `json:"picture_filename"`
}

func (r *UpdatePictureRequest) Validate() error {
	r.PictureFilename = blankToNil(r.PictureFilename)
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ===== RESPONSES =====

type EmployeeResponse struct {
	EmployeeID int64  `json:"employee_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Position   string `json:"position"`
}

// EmployeeDetailResponse is the employee and profile flattened into one object.
type EmployeeDetailResponse struct {
	EmployeeResponse
	Username        *string `json:"username"`
	Birthday        *string `json:"birthday"`
	Office          *string `json:"office"`
	Religion        *string `json:"religion"`
	Email           *string `json:"email"`
	Age             *int    `json:"age"`
	MobileNumber    *string `json:"mobile_number"`
	PictureFilename *string `json:"picture_filename"`
}

// EmployeeSummaryResponse is the read-only view shown to other employees.
type EmployeeSummaryResponse struct {
	EmployeeResponse
	Username        *string `json:"username"`
	PictureFilename *string `json:"picture_filename"`
}

type EmployeeOverviewResponse struct {
	Employee EmployeeDetailResponse      `json:"employee"`
	Training []training.TrainingResponse `json:"training"`
}

type EmployeeProfileViewResponse struct {
	EmployeeDetails EmployeeSummaryResponse     `json:"employeeDetails"`
	TrainingDetails []training.TrainingResponse `json:"trainingDetails"`
}

type CreateEmployeeResponse struct {
	EmployeeID int64 `json:"employeeId"`
}

type PictureResponse struct {
	PictureFilename *string `json:"picture_filename"`
}
