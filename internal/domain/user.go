package domain

import (
	"context"
	"time"
)

// User is a marketplace member. At most one user is logged in per store.
type User struct {
	ID           string
	Name         string
	Email        string
	AvatarURL    string
	LocationText string
	Age          *int
	PasswordHash string
	CreatedAt    time.Time
}

// Session is returned by every login entry point.
type Session struct {
	User  *User
	Token string
}

// Credentials are the form-based login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup carries the fields of the registration form.
type Signup struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	LocationText string `json:"location"`
}

// ProfilePatch holds the profile fields to overwrite; nil fields are left alone.
type ProfilePatch struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	AvatarURL    *string `json:"avatarUrl"`
	LocationText *string `json:"locationText"`
	Age          *int    `json:"age"`
}

// Apply merges the patch into u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.LocationText != nil {
		u.LocationText = *p.LocationText
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
