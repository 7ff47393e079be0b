package mcpsrv

import (
	"github.com/taskraum/taskraum-mcp/internal/cache"
	"github.com/taskraum/taskraum-mcp/internal/config"
	"github.com/taskraum/taskraum-mcp/internal/mcp/tools"
	"github.com/taskraum/taskraum-mcp/internal/nav"
	"github.com/taskraum/taskraum-mcp/internal/query"
	"github.com/taskraum/taskraum-mcp/internal/validate"
	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// Deps is what custom tools share with the builtin ones. Router follows the
// client's navigation only when NewServer built the client.
type Deps struct {
	Client    *client.Client
	Router    *nav.Router
	Cache     *cache.ProjectCache
	Config    *config.Config
	Validator *validate.Validator
	Query     *query.Engine
}

func publicDeps(d *tools.Deps) *Deps {
	return &Deps{
		Client:    d.Client,
		Router:    d.Router,
		Cache:     d.Cache,
		Config:    d.Config,
		Validator: d.Validator,
		Query:     d.Query,
	}
}
