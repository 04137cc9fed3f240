package training

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/service/file"
)

type TrainingServiceImpl struct {
	trainingRepo training.TrainingRepository
	fileService  file.FileService
}

func NewTrainingService(trainingRepo training.TrainingRepository, fileService file.FileService) training.TrainingService {
	return &TrainingServiceImpl{
		trainingRepo: trainingRepo,
		fileService:  fileService,
	}
}

// AddTraining implements training.TrainingService.
func (s *TrainingServiceImpl) AddTraining(ctx context.Context, req training.CreateTrainingRequest) (training.CreateTrainingResponse, error) {
	if err := req.Validate(); err != nil {
		return training.CreateTrainingResponse{}, err
	}

	newTraining := req.Training()
	if req.File != nil {
		ref, err := s.fileService.UploadCertificate(ctx, req.File, req.FileHeader.Filename)
		if err != nil {
			return training.CreateTrainingResponse{}, err
		}
		newTraining.ImgCert = &ref
	}

	created, err := s.trainingRepo.Create(ctx, newTraining)
	if err != nil {
		// Do not leave the certificate behind without a row pointing at it
		if newTraining.ImgCert != nil {
			if delErr := s.fileService.DeleteFile(ctx, *newTraining.ImgCert); delErr != nil {
				slog.Warn("Failed to remove orphaned certificate", "ref", *newTraining.ImgCert, "error", delErr)
			}
		}
		return training.CreateTrainingResponse{}, err
	}

	return training.CreateTrainingResponse{TrainingID: created.ID, ImgCert: created.ImgCert}, nil
}

// ListAll implements training.TrainingService.
func (s *TrainingServiceImpl) ListAll(ctx context.Context) ([]training.TrainingWithEmployeeResponse, error) {
	records, err := s.trainingRepo.ListWithEmployee(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list training: %w", err)
	}

	result := make([]training.TrainingWithEmployeeResponse, 0, len(records))
	for _, t := range records {
		result = append(result, training.TrainingWithEmployeeResponse{
			TrainingResponse: training.NewTrainingResponse(t.Training),
			FirstName:        t.FirstName,
			LastName:         t.LastName,
			MiddleName:       t.MiddleName,
		})
	}
	return result, nil
}

// ListByEmployee implements training.TrainingService.
func (s *TrainingServiceImpl) ListByEmployee(ctx context.Context, employeeID int64) ([]training.TrainingResponse, error) {
	records, err := s.trainingRepo.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training of employee %d: %w", employeeID, err)
	}
	return training.NewTrainingResponses(records), nil
}
