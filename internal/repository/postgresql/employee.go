package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT employee_id, first_name, last_name, middle_name, position
		FROM employees
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.MiddleName, &emp.Position); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT employee_id, first_name, last_name, middle_name, position
		FROM employees
		WHERE employee_id = $1
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.MiddleName, &emp.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %d: %w", id, err)
	}

	return emp, nil
}

// GetDetail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetDetail(ctx context.Context, id int64) (employee.EmployeeDetail, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT e.employee_id, e.first_name, e.last_name, e.middle_name, e.position,
			p.username, p.birthday, p.office, p.religion, p.email, p.age, p.mobile_number, p.picture_filename
		FROM employees e
		LEFT JOIN employee_profiles p ON p.employee_id = e.employee_id
		WHERE e.employee_id = $1
	`

	var d employee.EmployeeDetail
	err := q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.MiddleName, &d.Position,
		&d.Username, &d.Birthday, &d.Office, &d.Religion, &d.Email, &d.Age, &d.MobileNumber,
		&d.PictureFilename,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.EmployeeDetail{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeDetail{}, fmt.Errorf("failed to get employee detail with id %d: %w", id, err)
	}

	return d, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (first_name, last_name, middle_name, position)
		VALUES ($1, $2, $3, $4)
		RETURNING employee_id, first_name, last_name, middle_name, position
	`

	var created employee.Employee
	err := q.QueryRow(ctx, query,
		newEmployee.FirstName, newEmployee.LastName, newEmployee.MiddleName, newEmployee.Position,
	).Scan(&created.ID, &created.FirstName, &created.LastName, &created.MiddleName, &created.Position)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return created, nil
}

// Delete implements employee.EmployeeRepository.
// The profile row goes with it through ON DELETE CASCADE.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE employee_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee with id %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

// CreateProfile implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) CreateProfile(ctx context.Context, profile employee.Profile) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employee_profiles (
			employee_id, username, password, birthday, office, religion, email, age, mobile_number, picture_filename
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		profile.EmployeeID, profile.Username, profile.PasswordHash, profile.Birthday, profile.Office,
		profile.Religion, profile.Email, profile.Age, profile.MobileNumber, profile.PictureFilename,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return employee.ErrUsernameExists
		case database.IsForeignKeyViolation(err):
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to create profile for employee %d: %w", profile.EmployeeID, err)
	}

	return nil
}

// GetCredentialsByUsername implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetCredentialsByUsername(ctx context.Context, username string) (employee.Credentials, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT employee_id, username, password
		FROM employee_profiles
		WHERE username = $1
	`

	var c employee.Credentials
	err := q.QueryRow(ctx, query, username).Scan(&c.EmployeeID, &c.Username, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Credentials{}, employee.ErrEmployeeNotFound
		}
		return employee.Credentials{}, fmt.Errorf("failed to get credentials: %w", err)
	}

	return c, nil
}

// UpdateContactDetails implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdateContactDetails(ctx context.Context, id int64, details employee.ContactDetails) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employee_profiles
		SET birthday = $1, office = $2, religion = $3, email = $4, age = $5, mobile_number = $6
		WHERE employee_id = $7
	`

	tag, err := q.Exec(ctx, query,
		details.Birthday, details.Office, details.Religion, details.Email, details.Age, details.MobileNumber, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile of employee %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}

// UpdatePicture implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdatePicture(ctx context.Context, id int64, pictureFilename *string) (*string, error) {
	q := GetQuerier(ctx, e.db)

	// old is read under the row lock so the returned value is the one replaced
	query := `
		UPDATE employee_profiles p
		SET picture_filename = $1
		FROM (
			SELECT employee_id, picture_filename
			FROM employee_profiles
			WHERE employee_id = $2
			FOR UPDATE
		) old
		WHERE p.employee_id = old.employee_id
		RETURNING old.picture_filename
	`

	var previous *string
	err := q.QueryRow(ctx, query, pictureFilename, id).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to update picture of employee %d: %w", id, err)
	}

	return previous, nil
}
