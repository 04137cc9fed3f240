package training

import "context"

type TrainingRepository interface {
	Create(ctx context.Context, newTraining Training) (Training, error)
	ListByEmployeeID(ctx context.Context, employeeID int64) ([]Training, error)
	ListWithEmployee(ctx context.Context) ([]TrainingWithEmployee, error)
	// DeleteByEmployeeID removes every record of the employee and returns what was removed.
	DeleteByEmployeeID(ctx context.Context, employeeID int64) ([]Training, error)
}
