package domain

import (
	"errors"
	"time"
)

// Role is the single authority an identity holds at a time.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// User models an identity known to the system. Email is the login subject and
// is unique across all users.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubjectID returns the login key embedded in issued tokens.
func (u *User) SubjectID() string {
	return u.Email
}

// Authorities returns the authority labels granted to the user.
func (u *User) Authorities() []string {
	if u.Role == "" {
		return nil
	}
	return []string{string(u.Role)}
}

// WithoutSecret returns a copy of u with the password hash cleared.
func (u *User) WithoutSecret() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
