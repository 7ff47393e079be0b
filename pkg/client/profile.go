package client

import (
	"context"
	"fmt"
	"net/http"
)

// UpdateProfile changes the caller's name, surname or email.
func (c *Client) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodPut, "/api/me", nil, in, &user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return &user, nil
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := c.call(ctx, http.MethodPut, "/api/me/password", nil, in, nil); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}
	return nil
}
