package employee

import "time"

type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	MiddleName string
	Position   string
}

// ContactDetails are the profile fields an employee edits themselves.
type ContactDetails struct {
	Birthday     *time.Time
	Office       *string
	Religion     *string
	Email        *string
	Age          *int
	MobileNumber *string
}

// Profile is the 1:1 extension of Employee holding login and contact data.
type Profile struct {
	EmployeeID   int64
	Username     string
	PasswordHash string
	ContactDetails
	PictureFilename *string
}

// EmployeeDetail is an employee joined with its profile, without the password hash.
type EmployeeDetail struct {
	Employee
	Username *string
	ContactDetails
	PictureFilename *string
}

// Credentials is what login needs from a profile.
type Credentials struct {
	EmployeeID   int64
	Username     string
	PasswordHash string
}
