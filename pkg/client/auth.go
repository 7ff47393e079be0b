package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Login authenticates and stores the session cookies in the jar. A
// successful login starts a new session lifetime: the logout flag is cleared
// and the login redirect is re-armed.
func (c *Client) Login(ctx context.Context, in LoginInput) error {
	if err := c.call(ctx, http.MethodPost, c.paths.Login, nil, in, nil); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	c.beginSession()
	return nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodPost, c.paths.Register, nil, in, &user); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &user, nil
}

// Me returns the current user, or nil without an error when there is no
// session. It is a probe: it never refreshes and never navigates.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.Send(ctx, &Request{
		Method:           http.MethodGet,
		Path:             c.paths.Me,
		SkipAuthRedirect: true,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return nil, nil
		}
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	var user User
	if err := resp.DecodeJSON(&user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

// Logout ends the session. The logging-out flag is raised first so the
// logout call itself, and anything racing it, never triggers a refresh.
func (c *Client) Logout(ctx context.Context) error {
	c.SetLoggingOut(true)
	if err := c.call(ctx, http.MethodPost, c.paths.Logout, nil, nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}
