package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/upload"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/database"
	"github.com/cmlabs-hris/training-records-backend/internal/service/file"
	"golang.org/x/crypto/bcrypt"
)

const birthdayLayout = "2006-01-02"

type EmployeeServiceImpl struct {
	employeeRepo    employee.EmployeeRepository
	trainingRepo    training.TrainingRepository
	transactor      database.Transactor
	fileService     file.FileService
	defaultPassword string
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	trainingRepo training.TrainingRepository,
	transactor database.Transactor,
	fileService file.FileService,
	defaultPassword string,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo:    employeeRepo,
		trainingRepo:    trainingRepo,
		transactor:      transactor,
		fileService:     fileService,
		defaultPassword: defaultPassword,
	}
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		EmployeeID: emp.ID,
		FirstName:  emp.FirstName,
		LastName:   emp.LastName,
		MiddleName: emp.MiddleName,
		Position:   emp.Position,
	}
}

func mapDetailToResponse(d employee.EmployeeDetail) employee.EmployeeDetailResponse {
	var birthday *string
	if d.Birthday != nil {
		s := d.Birthday.Format(birthdayLayout)
		birthday = &s
	}

	return employee.EmployeeDetailResponse{
		EmployeeResponse: mapEmployeeToResponse(d.Employee),
		Username:         d.Username,
		Birthday:         birthday,
		Office:           d.Office,
		Religion:         d.Religion,
		Email:            d.Email,
		Age:              d.Age,
		MobileNumber:     d.MobileNumber,
		PictureFilename:  d.PictureFilename,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	result := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		result = append(result, mapEmployeeToResponse(emp))
	}
	return result, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id int64) (employee.EmployeeOverviewResponse, error) {
	detail, err := s.employeeRepo.GetDetail(ctx, id)
	if err != nil {
		return employee.EmployeeOverviewResponse{}, err
	}

	records, err := s.trainingRepo.ListByEmployeeID(ctx, id)
	if err != nil {
		return employee.EmployeeOverviewResponse{}, fmt.Errorf("failed to list training: %w", err)
	}

	return employee.EmployeeOverviewResponse{
		Employee: mapDetailToResponse(detail),
		Training: training.NewTrainingResponses(records),
	}, nil
}

// GetEmployeeDetail implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployeeDetail(ctx context.Context, id int64) (employee.EmployeeDetailResponse, error) {
	detail, err := s.employeeRepo.GetDetail(ctx, id)
	if err != nil {
		return employee.EmployeeDetailResponse{}, err
	}
	return mapDetailToResponse(detail), nil
}

// ViewEmployeeProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ViewEmployeeProfile(ctx context.Context, id int64) (employee.EmployeeProfileViewResponse, error) {
	detail, err := s.employeeRepo.GetDetail(ctx, id)
	if err != nil {
		return employee.EmployeeProfileViewResponse{}, err
	}

	records, err := s.trainingRepo.ListByEmployeeID(ctx, id)
	if err != nil {
		return employee.EmployeeProfileViewResponse{}, fmt.Errorf("failed to list training: %w", err)
	}

	return employee.EmployeeProfileViewResponse{
		EmployeeDetails: employee.EmployeeSummaryResponse{
			EmployeeResponse: mapEmployeeToResponse(detail.Employee),
			Username:         detail.Username,
			PictureFilename:  detail.PictureFilename,
		},
		TrainingDetails: training.NewTrainingResponses(records),
	}, nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.CreateEmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return employee.CreateEmployeeResponse{}, fmt.Errorf("failed to hash default password: %w", err)
	}

	var created employee.Employee
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			MiddleName: req.MiddleName,
			Position:   req.Position,
		})
		if err != nil {
			return err
		}

		return s.employeeRepo.CreateProfile(ctx, employee.Profile{
			EmployeeID:   created.ID,
			Username:     req.Profile.Username,
			PasswordHash: string(hash),
		})
	})
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "username", req.Profile.Username)
	return employee.CreateEmployeeResponse{EmployeeID: created.ID}, nil
}

// DeleteEmployee implements employee.EmployeeService.
// Training rows go first so no record is ever left without its owner.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id int64) error {
	var files []string

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		detail, err := s.employeeRepo.GetDetail(ctx, id)
		if err != nil {
			return err
		}

		removed, err := s.trainingRepo.DeleteByEmployeeID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.employeeRepo.Delete(ctx, id); err != nil {
			return err
		}

		for _, t := range removed {
			if t.ImgCert != nil {
				files = append(files, *t.ImgCert)
			}
		}
		if detail.PictureFilename != nil {
			files = append(files, *detail.PictureFilename)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ref := range files {
		s.deleteFileQuietly(ctx, ref)
	}

	slog.Info("Employee deleted", "employee_id", id, "files_removed", len(files))
	return nil
}

// UpdateProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateProfile(ctx context.Context, req employee.UpdateProfileRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.employeeRepo.UpdateContactDetails(ctx, req.EmployeeID, req.ContactDetails())
}

// UploadAvatar implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UploadAvatar(ctx context.Context, req employee.UploadAvatarRequest) (employee.PictureResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.PictureResponse{}, err
	}

	// Check first so nothing is stored for a missing employee
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return employee.PictureResponse{}, err
	}

	var ref *string
	if req.File != nil {
		stored, err := s.fileService.UploadAvatar(ctx, req.File, req.FileHeader.Filename)
		if err != nil {
			return employee.PictureResponse{}, err
		}
		ref = &stored
	}

	previous, err := s.employeeRepo.UpdatePicture(ctx, req.EmployeeID, ref)
	if err != nil {
		if ref != nil {
			s.deleteFileQuietly(ctx, *ref)
		}
		return employee.PictureResponse{}, err
	}

	if previous != nil && (ref == nil || *previous != *ref) {
		s.deleteFileQuietly(ctx, *previous)
	}

	return employee.PictureResponse{PictureFilename: ref}, nil
}

// UpdatePicture implements employee.EmployeeService.
// The reference must hold an avatar-grade image. The previous file is kept
// because the reference may be shared.
func (s *EmployeeServiceImpl) UpdatePicture(ctx context.Context, req employee.UpdatePictureRequest) (employee.PictureResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.PictureResponse{}, err
	}

	if req.PictureFilename != nil {
		err := s.fileService.CheckAvatar(ctx, *req.PictureFilename)
		switch {
		case err == nil:
		case errors.Is(err, upload.ErrFileTooLarge), errors.Is(err, upload.ErrInvalidFileType):
			return employee.PictureResponse{}, err
		default:
			return employee.PictureResponse{}, employee.ErrPictureNotFound
		}
	}

	if _, err := s.employeeRepo.UpdatePicture(ctx, req.EmployeeID, req.PictureFilename); err != nil {
		return employee.PictureResponse{}, err
	}

	return employee.PictureResponse{PictureFilename: req.PictureFilename}, nil
}

func (s *EmployeeServiceImpl) deleteFileQuietly(ctx context.Context, ref string) {
	if err := s.fileService.DeleteFile(ctx, ref); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Failed to delete stored file", "ref", ref, "error", err)
	}
}
