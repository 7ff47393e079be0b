// Package nav tracks which view the application is showing.
//
// The Router is the client's Navigator: when a session cannot be recovered
// the client sends it to the login view, and the MCP layer reads Location
// to tell the agent that it has to log in again.
package nav

import (
	"slices"
	"sync"
)

// maxHistory bounds how many past locations are remembered.
const maxHistory = 64

// Listener is called after every navigation with the old and new paths.
type Listener func(from, to string)

// Router is an in-memory view router. It is safe for concurrent use.
type Router struct {
	mu        sync.Mutex
	location  string
	loginView string
	history   []string
	listeners map[int]Listener
	nextID    int
}

// NewRouter creates a router showing start. loginView is where RequireAuth
// sends unauthenticated sessions.
func NewRouter(start, loginView string) *Router {
	return &Router{
		location:  start,
		loginView: loginView,
		listeners: make(map[int]Listener),
	}
}

// Location returns the path of the current view.
func (r *Router) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// Navigate switches to path. Navigating to the current path is a no-op.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	from := r.location
	if from == path {
		r.mu.Unlock()
		return
	}
	r.location = path
	r.history = append(r.history, from)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
	listeners := make([]Listener, 0, len(r.listeners))
	for _, id := range r.sortedIDs() {
		listeners = append(listeners, r.listeners[id])
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(from, path)
	}
}

// Back returns to the previous view. It reports false when there is none.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return false
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.mu.Unlock()

	r.Navigate(prev)

	// Navigate recorded the view we just left; drop it again.
	r.mu.Lock()
	if n := len(r.history); n > 0 {
		r.history = r.history[:n-1]
	}
	r.mu.Unlock()
	return true
}

// History returns previously visited paths, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// OnNavigate registers fn and returns a function that removes it.
func (r *Router) OnNavigate(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// OnLoginView reports whether the login view is showing.
func (r *Router) OnLoginView() bool {
	return r.Location() == r.loginView
}

// RequireAuth sends the router to the login view unless authenticated. It
// reports whether the current view may be shown.
func (r *Router) RequireAuth(authenticated bool) bool {
	if authenticated {
		return true
	}
	r.Navigate(r.loginView)
	return false
}

func (r *Router) sortedIDs() []int {
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
