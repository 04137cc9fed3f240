package http

import (
	"net/http"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/response"
)

type AuthHandler interface {
	EmployeeLogin(w http.ResponseWriter, r *http.Request)
	AdminLogin(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{authService: authService}
}

// EmployeeLogin implements AuthHandler.
func (a *AuthHandlerImpl) EmployeeLogin(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest
	if !decodeJSON(w, r, &loginReq, maxJSONBody) {
		return
	}

	res, err := a.authService.EmployeeLogin(r.Context(), loginReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{
		"employeeId":  res.EmployeeID,
		"accessToken": res.AccessToken,
		"expiresAt":   res.ExpiresAt,
	})
}

// AdminLogin implements AuthHandler.
func (a *AuthHandlerImpl) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest
	if !decodeJSON(w, r, &loginReq, maxJSONBody) {
		return
	}

	res, err := a.authService.AdminLogin(r.Context(), loginReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, response.Fields{
		"accessToken": res.AccessToken,
		"expiresAt":   res.ExpiresAt,
	})
}
