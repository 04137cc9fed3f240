package upload

import "errors"

var (
	ErrInvalidFileType = errors.New("file type is not allowed")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrFileNotFound    = errors.New("file not found")
)
