package jwt

import (
	"context"
	"strconv"
	"time"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims is what an access token says about its bearer.
type Claims struct {
	Subject    string
	Role       auth.Role
	EmployeeID *int64
}

type Service interface {
	GenerateAccessToken(subject string, role auth.Role, employeeID *int64) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(subject string, role auth.Role, employeeID *int64) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"sub":         subject,
		"employee_id": nil,
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}
	// Kept as a string so it survives the float64 round trip of JSON numbers
	if employeeID != nil {
		claims["employee_id"] = strconv.FormatInt(*employeeID, 10)
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ClaimsFromContext reads the verified access token placed by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return Claims{}, auth.ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Claims{}, auth.ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	if role != string(auth.RoleAdmin) && role != string(auth.RoleEmployee) {
		return Claims{}, auth.ErrInvalidToken
	}

	result := Claims{Subject: token.Subject(), Role: auth.Role(role)}
	if raw, ok := claims["employee_id"].(string); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Claims{}, auth.ErrInvalidToken
		}
		result.EmployeeID = &id
	}

	return result, nil
}
