package auth

import "context"

// AdminCredentialStore looks up the bcrypt hash of an administrator password.
// It returns ErrInvalidCredentials for unknown usernames.
type AdminCredentialStore interface {
	GetPasswordHash(ctx context.Context, username string) (string, error)
}
