package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines an account able to log in
type User struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	PasswordHash    string     `json:"-"`
	Role            Role       `json:"role"`
	FullName        string     `json:"fullName"`
	LinkedStudentID *uuid.UUID `json:"linkedStudentId,omitempty"` // only for RoleStudent accounts
	CreatedAt       time.Time  `json:"createdAt"`
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// UserSummary is the slice of a user joined into other records.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
}

// Identity is the authenticated caller decoded from the session cookie.
type Identity struct {
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	FullName  string    `json:"fullName"`
	SessionID string    `json:"-"`
}
