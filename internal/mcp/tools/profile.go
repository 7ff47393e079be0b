package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// ProfileUpdateInput is the input for taskraum_profile_update.
type ProfileUpdateInput struct {
	Name    *string `json:"name,omitempty" jsonschema:"New first name"`
	Surname *string `json:"surname,omitempty" jsonschema:"New last name"`
	Email   *string `json:"email,omitempty" jsonschema:"New email address"`
}

// ProfileOutput is the output for taskraum_profile_update.
type ProfileOutput struct {
	User client.User `json:"user"`
}

// PasswordChangeInput is the input for taskraum_password_change.
type PasswordChangeInput struct {
	CurrentPassword string `json:"current_password" jsonschema:"Current password"`
	NewPassword     string `json:"new_password" jsonschema:"New password of at least 8 characters"`
}

// PasswordChangeOutput is the output for taskraum_password_change.
type PasswordChangeOutput struct {
	Changed bool `json:"changed"`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// ToolProfileUpdate changes the signed-in user's name or email.
func ToolProfileUpdate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProfileUpdateInput) (*sdkmcp.CallToolResult, ProfileOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ProfileUpdateInput) (*sdkmcp.CallToolResult, ProfileOutput, error) {
		in := client.UpdateProfileInput{
			Name:    trimmed(input.Name),
			Surname: trimmed(input.Surname),
			Email:   trimmed(input.Email),
		}
		if in.Name == nil && in.Surname == nil && in.Email == nil {
			return nil, ProfileOutput{}, ErrInvalidInput("nothing to update: pass name, surname or email")
		}
		if err := d.Check(in); err != nil {
			return nil, ProfileOutput{}, err
		}

		user, err := d.Client.UpdateProfile(ctx, in)
		if err != nil {
			return nil, ProfileOutput{}, WrapAPIError(err)
		}
		return nil, ProfileOutput{User: *user}, nil
	}
}

// ToolPasswordChange changes the signed-in user's password.
func ToolPasswordChange(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input PasswordChangeInput) (*sdkmcp.CallToolResult, PasswordChangeOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input PasswordChangeInput) (*sdkmcp.CallToolResult, PasswordChangeOutput, error) {
		in := client.ChangePasswordInput{CurrentPassword: input.CurrentPassword, NewPassword: input.NewPassword}
		if err := d.Check(in); err != nil {
			return nil, PasswordChangeOutput{}, err
		}
		if err := d.Client.ChangePassword(ctx, in); err != nil {
			return nil, PasswordChangeOutput{}, WrapAPIError(err)
		}
		return nil, PasswordChangeOutput{Changed: true}, nil
	}
}
