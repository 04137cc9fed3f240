package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
)

type employeeRow struct {
	employee employee.Employee
	profile  *employee.Profile
}

func (r employeeRow) clone() employeeRow {
	if r.profile != nil {
		p := *r.profile
		r.profile = &p
	}
	return r
}

type employeeRepositoryImpl struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

func (e *employeeRepositoryImpl) List(ctx context.Context) ([]employee.Employee, error) {
	defer e.store.lock(ctx)()

	employees := make([]employee.Employee, 0, len(e.store.employees))
	for _, row := range e.store.employees {
		employees = append(employees, row.employee)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	defer e.store.lock(ctx)()

	row, ok := e.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return row.employee, nil
}

func (e *employeeRepositoryImpl) GetDetail(ctx context.Context, id int64) (employee.EmployeeDetail, error) {
	defer e.store.lock(ctx)()

	row, ok := e.store.employees[id]
	if !ok {
		return employee.EmployeeDetail{}, employee.ErrEmployeeNotFound
	}

	detail := employee.EmployeeDetail{Employee: row.employee}
	if p := row.profile; p != nil {
		username := p.Username
		detail.Username = &username
		detail.ContactDetails = p.ContactDetails
		detail.PictureFilename = p.PictureFilename
	}
	return detail, nil
}

func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	defer e.store.lock(ctx)()

	e.store.nextEmployeeID++
	newEmployee.ID = e.store.nextEmployeeID
	e.store.employees[newEmployee.ID] = &employeeRow{employee: newEmployee}
	return newEmployee, nil
}

func (e *employeeRepositoryImpl) Delete(ctx context.Context, id int64) error {
	defer e.store.lock(ctx)()

	if _, ok := e.store.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	// Same rule as the foreign key on training
	for _, t := range e.store.training {
		if t.EmployeeID == id {
			return errTrainingReferencesEmployee
		}
	}
	delete(e.store.employees, id)
	return nil
}

func (e *employeeRepositoryImpl) CreateProfile(ctx context.Context, profile employee.Profile) error {
	defer e.store.lock(ctx)()

	row, ok := e.store.employees[profile.EmployeeID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	for _, other := range e.store.employees {
		if other.profile != nil && other.profile.Username == profile.Username {
			return employee.ErrUsernameExists
		}
	}
	row.profile = &profile
	return nil
}

func (e *employeeRepositoryImpl) GetCredentialsByUsername(ctx context.Context, username string) (employee.Credentials, error) {
	defer e.store.lock(ctx)()

	for _, row := range e.store.employees {
		if p := row.profile; p != nil && p.Username == username {
			return employee.Credentials{
				EmployeeID:   p.EmployeeID,
				Username:     p.Username,
				PasswordHash: p.PasswordHash,
			}, nil
		}
	}
	return employee.Credentials{}, employee.ErrEmployeeNotFound
}

func (e *employeeRepositoryImpl) UpdateContactDetails(ctx context.Context, id int64, details employee.ContactDetails) error {
	defer e.store.lock(ctx)()

	row, ok := e.store.employees[id]
	if !ok || row.profile == nil {
		return employee.ErrEmployeeNotFound
	}
	row.profile.ContactDetails = details
	return nil
}

func (e *employeeRepositoryImpl) UpdatePicture(ctx context.Context, id int64, pictureFilename *string) (*string, error) {
	defer e.store.lock(ctx)()

	row, ok := e.store.employees[id]
	if !ok || row.profile == nil {
		return nil, employee.ErrEmployeeNotFound
	}
	previous := row.profile.PictureFilename
	row.profile.PictureFilename = pictureFilename
	return previous, nil
}
