package tools

import (
	"context"
	"errors"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// LoginToolInput is the input for taskraum_login.
type LoginToolInput struct {
	Email    string `json:"email" jsonschema:"Account email address"`
	Password string `json:"password" jsonschema:"Account password"`
}

// RegisterToolInput is the input for taskraum_register.
type RegisterToolInput struct {
	Name     string `json:"name" jsonschema:"First name"`
	Surname  string `json:"surname" jsonschema:"Last name"`
	Email    string `json:"email" jsonschema:"Account email address"`
	Password string `json:"password" jsonschema:"Password of at least 8 characters"`
}

// NoInput is the input for tools without arguments.
type NoInput struct{}

// SessionOutput describes the current session.
type SessionOutput struct {
	Authenticated bool         `json:"authenticated"`
	User          *client.User `json:"user,omitempty"`
	View          string       `json:"view,omitempty"`
	Hint          string       `json:"hint,omitempty"`
}

// RegisterOutput is the output for taskraum_register.
type RegisterOutput struct {
	User client.User `json:"user"`
	Hint string      `json:"hint"`
}

// ToolLogin signs in and moves to the home view.
func ToolLogin(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input LoginToolInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input LoginToolInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
		in := client.LoginInput{Email: strings.TrimSpace(input.Email), Password: input.Password}
		if err := d.Check(in); err != nil {
			return nil, SessionOutput{}, err
		}

		if err := d.Client.Login(ctx, in); err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
				return nil, SessionOutput{}, &CodedError{Code: ErrCodeAuthRequired, Message: "invalid email or password", Cause: err}
			}
			return nil, SessionOutput{}, WrapAPIError(err)
		}
		if d.Router != nil {
			d.Router.Navigate(d.Config.HomeViewPath)
		}

		user, err := d.Client.Me(ctx)
		if err != nil {
			return nil, SessionOutput{}, WrapAPIError(err)
		}
		return nil, SessionOutput{
			Authenticated: user != nil,
			User:          user,
			View:          d.location(),
		}, nil
	}
}

// ToolRegister creates an account without signing in.
func ToolRegister(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RegisterToolInput) (*sdkmcp.CallToolResult, RegisterOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RegisterToolInput) (*sdkmcp.CallToolResult, RegisterOutput, error) {
		in := client.RegisterInput{
			Name:     strings.TrimSpace(input.Name),
			Surname:  strings.TrimSpace(input.Surname),
			Email:    strings.TrimSpace(input.Email),
			Password: input.Password,
		}
		if err := d.Check(in); err != nil {
			return nil, RegisterOutput{}, err
		}

		user, err := d.Client.Register(ctx, in)
		if err != nil {
			return nil, RegisterOutput{}, WrapAPIError(err)
		}
		return nil, RegisterOutput{
			User: *user,
			Hint: "Account created. Call taskraum_login with the same email and password to start a session.",
		}, nil
	}
}

// ToolLogout ends the session and returns to the login view.
func ToolLogout(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input NoInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input NoInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
		err := d.Client.Logout(ctx)
		var apiErr *client.APIError
		if err != nil && !(errors.As(err, &apiErr) && apiErr.IsUnauthorized()) {
			return nil, SessionOutput{}, WrapAPIError(err)
		}
		d.endSession()
		return nil, SessionOutput{Authenticated: false, View: d.location()}, nil
	}
}

// ToolWhoami reports the signed-in user. It probes the session without
// refreshing it.
func ToolWhoami(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input NoInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input NoInput) (*sdkmcp.CallToolResult, SessionOutput, error) {
		user, err := d.Client.Me(ctx)
		if err != nil {
			return nil, SessionOutput{}, WrapAPIError(err)
		}

		out := SessionOutput{Authenticated: user != nil, User: user}
		if d.Router != nil {
			d.Router.RequireAuth(out.Authenticated)
		}
		out.View = d.location()
		if !out.Authenticated {
			out.Hint = "Not signed in. Call taskraum_login first."
		}
		return nil, out, nil
	}
}
