package models

import (
	"time"

	"github.com/google/uuid"
)

// User type constants
const (
	UserTypeUser       = "user"
	UserTypeAdmin      = "admin"
	UserTypeSuperadmin = "superadmin"
)

// User represents an authenticated account. Only ID and UserType drive authorization.
type User struct {
	ID        uuid.UUID `json:"id"`
	Sub       string    `json:"sub"` // external identity subject (OIDC)
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	UserType  string    `json:"user_type"` // user, admin, superadmin
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSuperadmin returns true if the user is a superadmin.
func (u *User) IsSuperadmin() bool {
	return u.UserType == UserTypeSuperadmin
}

// IsAdmin returns true if the user can act as an administrator (admin or superadmin).
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin || u.UserType == UserTypeSuperadmin
}

// ValidUserType reports whether t is one of the known user types.
func ValidUserType(t string) bool {
	switch t {
	case UserTypeUser, UserTypeAdmin, UserTypeSuperadmin:
		return true
	}
	return false
}
