package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const trainingColumns = `training_id, training_name, description, trainer_name, date_attended, date_completed, employee_id, "imgCert"`

type trainingRepositoryImpl struct {
	db *database.DB
}

func NewTrainingRepository(db *database.DB) training.TrainingRepository {
	return &trainingRepositoryImpl{db: db}
}

func scanTraining(row pgx.Row, t *training.Training, extra ...any) error {
	dest := []any{
		&t.ID, &t.Name, &t.Description, &t.TrainerName,
		&t.DateAttended, &t.DateCompleted, &t.EmployeeID, &t.ImgCert,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create implements training.TrainingRepository.
func (r *trainingRepositoryImpl) Create(ctx context.Context, newTraining training.Training) (training.Training, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO training (training_name, description, trainer_name, date_attended, date_completed, employee_id, "imgCert")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + trainingColumns

	var created training.Training
	err := scanTraining(q.QueryRow(ctx, query,
		newTraining.Name, newTraining.Description, newTraining.TrainerName,
		newTraining.DateAttended, newTraining.DateCompleted, newTraining.EmployeeID, newTraining.ImgCert,
	), &created)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return training.Training{}, training.ErrEmployeeNotFound
		}
		return training.Training{}, fmt.Errorf("failed to create training: %w", err)
	}

	return created, nil
}

// ListByEmployeeID implements training.TrainingRepository.
func (r *trainingRepositoryImpl) ListByEmployeeID(ctx context.Context, employeeID int64) ([]training.Training, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + trainingColumns + ` FROM training WHERE employee_id = $1 ORDER BY training_id`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training of employee %d: %w", employeeID, err)
	}
	defer rows.Close()

	records := []training.Training{}
	for rows.Next() {
		var t training.Training
		if err := scanTraining(rows, &t); err != nil {
			return nil, err
		}
		records = append(records, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// ListWithEmployee implements training.TrainingRepository.
func (r *trainingRepositoryImpl) ListWithEmployee(ctx context.Context) ([]training.TrainingWithEmployee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT t.training_id, t.training_name, t.description, t.trainer_name, t.date_attended,
			t.date_completed, t.employee_id, t."imgCert", e.first_name, e.last_name, e.middle_name
		FROM training t
		JOIN employees e ON e.employee_id = t.employee_id
		ORDER BY t.training_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list training: %w", err)
	}
	defer rows.Close()

	records := []training.TrainingWithEmployee{}
	for rows.Next() {
		var t training.TrainingWithEmployee
		if err := scanTraining(rows, &t.Training, &t.FirstName, &t.LastName, &t.MiddleName); err != nil {
			return nil, err
		}
		records = append(records, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteByEmployeeID implements training.TrainingRepository.
func (r *trainingRepositoryImpl) DeleteByEmployeeID(ctx context.Context, employeeID int64) ([]training.Training, error) {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM training WHERE employee_id = $1 RETURNING ` + trainingColumns

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete training of employee %d: %w", employeeID, err)
	}
	defer rows.Close()

	removed := []training.Training{}
	for rows.Next() {
		var t training.Training
		if err := scanTraining(rows, &t); err != nil {
			return nil, err
		}
		removed = append(removed, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return removed, nil
}
