package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleDepartment UserRole = "DEPARTMENT"
)

// JWTClaims is the bearer-token payload. Tokens are issued by the
// external auth layer; this service only validates them and trusts the
// resolved identity.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	DepartmentID string   `json:"department_id,omitempty"`
	FullName     string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessDepartment reports whether the caller may act on the given
// department's data. Admins may act on any department.
func (c *JWTClaims) CanAccessDepartment(departmentID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleAdmin {
		return true
	}
	return c.Role == RoleDepartment && c.DepartmentID != "" && c.DepartmentID == departmentID
}
