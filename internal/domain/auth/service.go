package auth

import (
	"context"
)

type AuthService interface {
	EmployeeLogin(ctx context.Context, req LoginRequest) (EmployeeLoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (AdminLoginResponse, error)
}
