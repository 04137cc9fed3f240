package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// ListEmployees returns every employee; empty is not an error
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	// GetEmployee returns the flattened employee with its training records
	GetEmployee(ctx context.Context, id int64) (EmployeeOverviewResponse, error)

	// GetEmployeeDetail returns the employee joined with its profile
	GetEmployeeDetail(ctx context.Context, id int64) (EmployeeDetailResponse, error)

	// ViewEmployeeProfile returns the read-only profile view with training records
	ViewEmployeeProfile(ctx context.Context, id int64) (EmployeeProfileViewResponse, error)

	// CreateEmployee creates the employee and its profile with the default password
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (CreateEmployeeResponse, error)

	// DeleteEmployee removes the employee and all of its training records atomically
	DeleteEmployee(ctx context.Context, id int64) error

	UpdateProfile(ctx context.Context, req UpdateProfileRequest) error
	UploadAvatar(ctx context.Context, req UploadAvatarRequest) (PictureResponse, error)
	UpdatePicture(ctx context.Context, req UpdatePictureRequest) (PictureResponse, error)
}
