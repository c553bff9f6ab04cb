package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/profile-builder/internal/types"
)

const mePath = "/api/users/me"

// Register creates an account and signs in as it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*types.User, error) {
	return c.startSession(ctx, "/api/auth/register", types.CreateUserRequest{Name: name, Email: email, Password: password})
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*types.User, error) {
	return c.startSession(ctx, "/api/auth/login", types.LoginRequest{Email: email, Password: password})
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*types.User, error) {
	var resp types.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "login response has no user"}
	}
	c.setSession(resp.Token, resp.User.ID)
	c.cache.invalidatePrefix("/api/")
	return resp.User, nil
}

// Logout ends the session and drops every cached response.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setSession("", uuid.Nil)
	c.cache.invalidatePrefix("/api/")
	return err
}

// UpdatePassword changes the signed-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/auth/password", types.UpdatePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	u, err := NewResource[types.User](c, mePath).Get(ctx)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the signed-in user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, req *types.UpdateProfileRequest) (*types.User, error) {
	var u types.User
	err := c.doJSON(ctx, http.MethodPut, mePath, req, &u)
	c.cache.invalidate(mePath)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
