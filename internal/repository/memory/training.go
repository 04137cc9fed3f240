package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
)

var errTrainingReferencesEmployee = errors.New("training records still reference this employee")

type trainingRow = training.Training

type trainingRepositoryImpl struct {
	store *Store
}

func NewTrainingRepository(store *Store) training.TrainingRepository {
	return &trainingRepositoryImpl{store: store}
}

func (r *trainingRepositoryImpl) Create(ctx context.Context, newTraining training.Training) (training.Training, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.employees[newTraining.EmployeeID]; !ok {
		return training.Training{}, training.ErrEmployeeNotFound
	}

	r.store.nextTrainingID++
	newTraining.ID = r.store.nextTrainingID
	row := newTraining
	r.store.training[row.ID] = &row
	return newTraining, nil
}

func (r *trainingRepositoryImpl) ListByEmployeeID(ctx context.Context, employeeID int64) ([]training.Training, error) {
	defer r.store.lock(ctx)()

	return r.byEmployee(employeeID), nil
}

func (r *trainingRepositoryImpl) ListWithEmployee(ctx context.Context) ([]training.TrainingWithEmployee, error) {
	defer r.store.lock(ctx)()

	records := make([]training.TrainingWithEmployee, 0, len(r.store.training))
	for _, t := range r.store.training {
		owner, ok := r.store.employees[t.EmployeeID]
		if !ok {
			continue
		}
		records = append(records, training.TrainingWithEmployee{
			Training:   *t,
			FirstName:  owner.employee.FirstName,
			LastName:   owner.employee.LastName,
			MiddleName: owner.employee.MiddleName,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (r *trainingRepositoryImpl) DeleteByEmployeeID(ctx context.Context, employeeID int64) ([]training.Training, error) {
	defer r.store.lock(ctx)()

	removed := r.byEmployee(employeeID)
	for _, t := range removed {
		delete(r.store.training, t.ID)
	}
	return removed, nil
}

// byEmployee expects the store to be locked.
func (r *trainingRepositoryImpl) byEmployee(employeeID int64) []training.Training {
	records := []training.Training{}
	for _, t := range r.store.training {
		if t.EmployeeID == employeeID {
			records = append(records, *t)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}
