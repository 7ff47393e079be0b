package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// refreshState tracks the session refresh in flight and the requests queued
// behind it. At most one refresh call is outstanding while inFlight is set.
type refreshState struct {
	mu       sync.Mutex
	inFlight bool
	waiters  []chan error

	// release delivers the outcome to one waiter. Nil means a plain send.
	release func(ch chan<- error, err error)
}

// join either makes the caller the refresher (lead == true) or enqueues a
// waiter that receives the refresh outcome once it settles.
func (s *refreshState) join() (wait <-chan error, lead bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inFlight {
		s.inFlight = true
		return nil, true
	}
	ch := make(chan error, 1)
	s.waiters = append(s.waiters, ch)
	return ch, false
}

// settle clears inFlight and releases every waiter in FIFO order with the
// refresh outcome. Waiter channels are buffered, so this never blocks.
func (s *refreshState) settle(err error) int {
	s.mu.Lock()
	waiters := s.waiters
	s.waiters = nil
	s.inFlight = false
	s.mu.Unlock()

	for _, ch := range waiters {
		if s.release != nil {
			s.release(ch, err)
			continue
		}
		ch <- err
	}
	return len(waiters)
}

func (s *refreshState) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// refreshSession issues the refresh call straight on the transport, outside
// the interception pipeline. The call is detached from ctx's cancellation so
// a single caller going away cannot fail every queued request.
func (c *Client) refreshSession(ctx context.Context) error {
	start := time.Now()

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	slog.Info("refreshing session", slog.String("path", c.paths.Refresh))

	_, err := c.roundTrip(refreshCtx, &Request{
		Method:           http.MethodPost,
		Path:             c.paths.Refresh,
		SkipAuthRedirect: true,
	}, false)
	if err != nil {
		slog.Warn("session refresh failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("refreshing session: %w", err)
	}

	slog.Info("session refreshed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
