// Package cache provides caching utilities for the MCP server.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taskraum/taskraum-mcp/pkg/client"
)

// ProjectCache provides thread-safe LRU caching of projects by ID.
//
// Entries are copies: callers may modify what they Put or Get without
// affecting the cache.
type ProjectCache struct {
	cache *lru.Cache[string, client.Project]
}

// NewProjectCache creates a new LRU cache with the specified maximum number of items.
func NewProjectCache(maxItems int) (*ProjectCache, error) {
	c, err := lru.New[string, client.Project](maxItems)
	if err != nil {
		return nil, err
	}
	return &ProjectCache{cache: c}, nil
}

// Get retrieves a project from the cache by its ID.
func (c *ProjectCache) Get(id string) (*client.Project, bool) {
	p, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	return &p, true
}

// Put adds or updates a project in the cache.
func (c *ProjectCache) Put(p *client.Project) {
	if p == nil || p.ID == "" {
		return
	}
	c.cache.Add(p.ID, *p)
}

// PutAll caches every project in ps.
func (c *ProjectCache) PutAll(ps []client.Project) {
	for i := range ps {
		c.Put(&ps[i])
	}
}

// Projects returns the cached projects, least recently used first.
func (c *ProjectCache) Projects() []client.Project {
	return c.cache.Values()
}

// Remove drops a project, e.g. after it was deleted.
func (c *ProjectCache) Remove(id string) {
	c.cache.Remove(id)
}

// Purge empties the cache. Called when the session ends, since projects
// are per user.
func (c *ProjectCache) Purge() {
	c.cache.Purge()
}

// Len returns the current number of items in the cache.
func (c *ProjectCache) Len() int {
	return c.cache.Len()
}
