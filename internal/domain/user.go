package domain

import "time"

// UserRole enumerates platform roles. Staff-level roles may see internal
// comments, request suggestions and apply them; admin additionally crosses
// tenant boundaries.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOrgAdmin UserRole = "org_admin"
	RoleStaff    UserRole = "staff"
	RoleMember   UserRole = "member"
)

// IsStaffLevel reports whether the role carries support-staff privileges.
func (r UserRole) IsStaffLevel() bool {
	return r == RoleAdmin || r == RoleOrgAdmin || r == RoleStaff
}

// User is the domain model for platform members. Every user belongs to
// exactly one tenant.
type User struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
