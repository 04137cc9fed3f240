package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username is unknown, so a miss costs
// as much as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type AuthServiceImpl struct {
	employee.EmployeeRepository
	auth.AdminCredentialStore
	jwt.Service
}

func NewAuthService(employeeRepository employee.EmployeeRepository, adminStore auth.AdminCredentialStore, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository:   employeeRepository,
		AdminCredentialStore: adminStore,
		Service:              jwtService,
	}
}

// HashPassword hashes a password with the default bcrypt cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// EmployeeLogin implements auth.AuthService.
func (a *AuthServiceImpl) EmployeeLogin(ctx context.Context, loginReq auth.LoginRequest) (auth.EmployeeLoginResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.EmployeeLoginResponse{}, err
	}

	creds, err := a.GetCredentialsByUsername(ctx, loginReq.Username)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(loginReq.Password))
			return auth.EmployeeLoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.EmployeeLoginResponse{}, fmt.Errorf("failed to get credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.EmployeeLoginResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.GenerateAccessToken(creds.Username, auth.RoleEmployee, &creds.EmployeeID)
	if err != nil {
		return auth.EmployeeLoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.EmployeeLoginResponse{
		EmployeeID:  creds.EmployeeID,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// AdminLogin implements auth.AuthService.
func (a *AuthServiceImpl) AdminLogin(ctx context.Context, loginReq auth.LoginRequest) (auth.AdminLoginResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.AdminLoginResponse{}, err
	}

	hash, err := a.GetPasswordHash(ctx, loginReq.Username)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(loginReq.Password))
			return auth.AdminLoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.AdminLoginResponse{}, fmt.Errorf("failed to get admin credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(loginReq.Password)); err != nil {
		return auth.AdminLoginResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.GenerateAccessToken(loginReq.Username, auth.RoleAdmin, nil)
	if err != nil {
		return auth.AdminLoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.AdminLoginResponse{AccessToken: token, ExpiresAt: expiresAt}, nil
}
