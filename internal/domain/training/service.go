package training

import "context"

type TrainingService interface {
	AddTraining(ctx context.Context, req CreateTrainingRequest) (CreateTrainingResponse, error)
	ListAll(ctx context.Context) ([]TrainingWithEmployeeResponse, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]TrainingResponse, error)
}
