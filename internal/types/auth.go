// Package types provides the structured data shared by the API server, the client and the editor.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateUserRequest represents the request to register a new user with password authentication.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (never carries the password hash).
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Title       string    `json:"title,omitempty"`
	Location    string    `json:"location,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AITagline   string    `json:"aiTagline,omitempty"`
	PasswordSet bool      `json:"passwordSet"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdateProfileRequest carries the editable identity fields of a user.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=5000"`
	AITagline *string `json:"aiTagline,omitempty" validate:"omitempty,max=300"`
}

// Apply copies the non-nil fields of the request onto u.
func (r *UpdateProfileRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Title != nil {
		u.Title = *r.Title
	}
	if r.Location != nil {
		u.Location = *r.Location
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.AITagline != nil {
		u.AITagline = *r.AITagline
	}
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

var requestValidator = validator.New()

// Validate checks the registration fields.
func (r *CreateUserRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate checks the login fields.
func (r *LoginRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Validate checks that both passwords are present and the new one is long enough.
func (r *UpdatePasswordRequest) Validate() error {
	return requestValidator.Struct(r)
}
