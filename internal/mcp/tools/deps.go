package tools

import (
	"context"
	"time"

	"github.com/taskraum/taskraum-mcp/internal/cache"
	"github.com/taskraum/taskraum-mcp/internal/config"
	"github.com/taskraum/taskraum-mcp/internal/nav"
	"github.com/taskraum/taskraum-mcp/internal/query"
	"github.com/taskraum/taskraum-mcp/internal/validate"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client    *client.Client
	Router    *nav.Router
	Cache     *cache.ProjectCache
	Config    *config.Config
	Validator *validate.Validator
	Query     *query.Engine

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Today returns the current date as YYYY-MM-DD.
func (d *Deps) Today() string {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().Format(time.DateOnly)
}

// Check validates a request payload, returning an INVALID_INPUT error.
func (d *Deps) Check(payload any) error {
	v := d.Validator
	if v == nil {
		return WrapAPIError(validate.Check(payload))
	}
	return WrapAPIError(v.Check(payload))
}

// Project returns a project, from the cache unless fresh is set.
func (d *Deps) Project(ctx context.Context, id string, fresh bool) (*client.Project, bool, error) {
	if !fresh && d.Cache != nil {
		if p, ok := d.Cache.Get(id); ok {
			return p, true, nil
		}
	}
	p, err := d.Client.GetProject(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if d.Cache != nil {
		d.Cache.Put(p)
	}
	return p, false, nil
}

// endSession forgets per-user state and shows the login view.
func (d *Deps) endSession() {
	if d.Cache != nil {
		d.Cache.Purge()
	}
	if d.Router != nil {
		d.Router.Navigate(d.Config.LoginViewPath)
	}
}

// location returns the current view, or "" without a router.
func (d *Deps) location() string {
	if d.Router == nil {
		return ""
	}
	return d.Router.Location()
}
