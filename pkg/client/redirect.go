package client

import (
	"log/slog"
	"sync"
)

// Navigator moves the application to another view. The Client uses it to
// send the user to the login view when a session cannot be recovered.
type Navigator interface {
	// Location returns the path of the current view.
	Location() string
	// Navigate switches to the view at path.
	Navigate(path string)
}

// memoryNavigator is the default Navigator: it only remembers where it is.
type memoryNavigator struct {
	mu   sync.Mutex
	path string
}

func (n *memoryNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *memoryNavigator) Navigate(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

// redirectToLogin navigates to the login view at most once per session
// lifetime, and not at all if the login view is already showing.
func (c *Client) redirectToLogin(reason string) {
	if c.redirected.Load() {
		return
	}
	if c.navigator.Location() == c.loginView {
		return
	}
	if !c.redirected.CompareAndSwap(false, true) {
		return
	}

	slog.Warn("session unrecoverable, redirecting to login",
		slog.String("reason", reason),
		slog.String("view", c.loginView),
	)
	c.navigator.Navigate(c.loginView)
}
