package employee

import "context"

type EmployeeRepository interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	GetDetail(ctx context.Context, id int64) (EmployeeDetail, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Delete(ctx context.Context, id int64) error
	CreateProfile(ctx context.Context, profile Profile) error
	GetCredentialsByUsername(ctx context.Context, username string) (Credentials, error)
	UpdateContactDetails(ctx context.Context, id int64, details ContactDetails) error
	// UpdatePicture stores the new reference and returns the one it replaced.
	UpdatePicture(ctx context.Context, id int64, pictureFilename *string) (previous *string, err error)
}
