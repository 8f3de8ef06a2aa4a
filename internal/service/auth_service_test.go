package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aishe-survey-api/internal/models"
)

func signTestToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func departmentClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID:       "user-1",
		Role:         models.RoleDepartment,
		DepartmentID: "dept-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "aishe-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret", Issuer: "aishe-auth"}, nil)

	signed := signTestToken(t, "test-secret", departmentClaims())
	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleDepartment, claims.Role)
	require.True(t, claims.CanAccessDepartment("dept-1"))
	require.False(t, claims.CanAccessDepartment("dept-2"))
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)

	signed := signTestToken(t, "other-secret", departmentClaims())
	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)

	claims := departmentClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	signed := signTestToken(t, "test-secret", claims)
	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceRejectsWrongIssuer(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret", Issuer: "aishe-auth"}, nil)

	claims := departmentClaims()
	claims.Issuer = "someone-else"
	signed := signTestToken(t, "test-secret", claims)
	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceRejectsDepartmentTokenWithoutDepartment(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)

	claims := departmentClaims()
	claims.DepartmentID = ""
	signed := signTestToken(t, "test-secret", claims)
	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceAdminToken(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret"}, nil)

	claims := &models.JWTClaims{
		UserID: "admin-1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed := signTestToken(t, "test-secret", claims)
	parsed, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	require.True(t, parsed.CanAccessDepartment("dept-anything"))
}
