package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
	RoleGuest   UserRole = "GUEST"
)

// User represents an application user stored in the users table.
type User struct {
	ID                  string     `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Role                UserRole   `db:"role" json:"role"`
	Active              bool       `db:"active" json:"active"`
	ForcePasswordChange bool       `db:"force_password_change" json:"force_password_change"`
	LastLogin           *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// HomePath returns the landing route for the user's role: admins to the
// admin panel, teachers to the teacher dashboard, everyone else to the
// student home.
func (u *User) HomePath() string {
	switch u.Role {
	case RoleAdmin:
		return "/admin"
	case RoleTeacher:
		return "/teacher"
	default:
		return "/home"
	}
}

// ValidRole reports whether the given value names a known role.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleGuest:
		return true
	}
	return false
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
