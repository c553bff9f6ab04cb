package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/config"
	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/types"
)

// UserService owns accounts: registration, login, passwords and the
// identity fields shown at the top of a profile.
type UserService struct {
	users     db.UserStore
	passwords *config.PasswordConfig
}

func NewUserService(users db.UserStore, passwords *config.PasswordConfig) *UserService {
	return &UserService{users: users, passwords: passwords}
}

func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	taken, err := s.users.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, req.Name, req.Email, hash)
	switch {
	case errors.Is(err, db.ErrEmailTaken):
		// a concurrent registration won
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return publicUser(created), nil
}

// Login returns ErrInvalidCredentials for an unknown email, a user without a
// password and a wrong password alike.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil || !u.PasswordSet || !s.passwords.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return publicUser(u), nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.VerifyPassword(current, u.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	hash, err := s.passwords.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetUser returns the public view of a user; the password hash never leaves the service.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUser(u), nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.Apply(u)
	if err := s.users.UpdateUserProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) lookup(ctx context.Context, userID uuid.UUID) (*db.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return u, nil
}

// publicUser copies the user without its password hash.
func publicUser(u *db.User) *types.User {
	if u == nil {
		return nil
	}
	out := u.User
	return &out
}
