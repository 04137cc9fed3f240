package auth

import (
	"context"
	"crypto/subtle"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
)

// StaticAdminStore holds the one administrator credential from configuration.
type StaticAdminStore struct {
	username     string
	passwordHash string
}

func NewStaticAdminStore(username, passwordHash string) *StaticAdminStore {
	return &StaticAdminStore{username: username, passwordHash: passwordHash}
}

func (s *StaticAdminStore) GetPasswordHash(ctx context.Context, username string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return "", auth.ErrInvalidCredentials
	}
	return s.passwordHash, nil
}

var _ auth.AdminCredentialStore = (*StaticAdminStore)(nil)
