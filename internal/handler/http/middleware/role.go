package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/cmlabs-hris/training-records-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/jwt"
)

// RequireRole lets through only tokens issued for role
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if claims.Role != role {
				response.HandleError(w, auth.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
