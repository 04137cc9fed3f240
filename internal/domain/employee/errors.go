package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrUsernameExists    = errors.New("username already exists")
	ErrPictureNotFound   = errors.New("picture reference does not resolve to a stored file")
	ErrInvalidEmployeeID = errors.New("employee id must be a positive integer")
)
