package models

import "time"

// UserRole is the closed set of roles in the review workflow. Authorization is
// driven by per-operation allow-lists; no role is implicitly superior.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleCoordinator UserRole = "coordinator"
	RoleProfessor   UserRole = "professor"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleProfessor:
		return true
	}
	return false
}

// IsReviewer reports whether the role may review plannings and evidence.
func (r UserRole) IsReviewer() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

// User represents an application user stored in the users table. Users are
// never hard-deleted; deactivation flips is_active.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	IsActive  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CreateUserRequest is the payload for provisioning a user.
type CreateUserRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role" validate:"required"`
}

// UpdateUserRequest is the payload for updating a user. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name     *string   `json:"name,omitempty"`
	Role     *UserRole `json:"role,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// ProfessorInfo is the owner projection attached to plannings and evidence.
type ProfessorInfo struct {
	ID    string `db:"professor_id" json:"id"`
	Name  string `db:"professor_name" json:"name"`
	Email string `db:"professor_email" json:"email"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
