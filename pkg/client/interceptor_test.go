package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskraum/taskraum-mcp/internal/testbackend"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "correct-horse"
)

type countingNavigator struct {
	mu       sync.Mutex
	location string
	visits   []string
}

func (n *countingNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *countingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = path
	n.visits = append(n.visits, path)
}

func (n *countingNavigator) Visits() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visits...)
}

func newTestClient(t *testing.T, baseURL string) (*Client, *countingNavigator) {
	t.Helper()
	nav := &countingNavigator{location: "/dashboard"}
	c := New(
		WithBaseURL(baseURL),
		WithHTTPClient(&http.Client{Jar: NewCookieJar(), Timeout: 5 * time.Second}),
		WithNavigator(nav),
		WithRefreshTimeout(5*time.Second),
	)
	return c, nav
}

// newSession starts a fake backend and returns a logged-in client.
func newSession(t *testing.T) (*testbackend.Backend, *Client, *countingNavigator) {
	t.Helper()
	b := testbackend.New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	b.AddUser(testEmail, testPassword, "Ada")
	c, nav := newTestClient(t, srv.URL)
	require.NoError(t, c.Login(context.Background(), LoginInput{Email: testEmail, Password: testPassword}))
	return b, c, nav
}

// waitForWaiters blocks until n requests are queued behind the refresh.
func waitForWaiters(c *Client, n int) {
	deadline := time.Now().Add(5 * time.Second)
	for c.refresh.pending() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

func TestSend_NonUnauthorizedPassesThrough(t *testing.T) {
	b, c, nav := newSession(t)

	_, err := c.GetProject(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Project not found", apiErr.Message)
	assert.Equal(t, 0, b.RefreshCalls())
	assert.Empty(t, nav.Visits())
}

func TestSend_RefreshesAndReplaysOnce(t *testing.T) {
	b, c, nav := newSession(t)
	ctx := context.Background()

	created, err := c.CreateProject(ctx, CreateProjectInput{Title: "Garden"})
	require.NoError(t, err)

	b.ExpireAccess()

	got, err := c.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garden", got.Title)
	assert.Equal(t, 1, b.RefreshCalls())
	assert.Equal(t, 2, b.Calls("/api/projects/"+created.ID))
	assert.Empty(t, nav.Visits())
}

func TestSend_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	b, c, nav := newSession(t)
	ctx := context.Background()
	const n = 10

	b.ExpireAccess()
	b.OnRefresh(func() { waitForWaiters(c, n-1) })

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.ListProjects(ctx, nil)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, 1, b.RefreshCalls())
	assert.Equal(t, 2*n, b.Calls("/api/projects"))
	assert.Equal(t, 0, c.refresh.pending())
	assert.Empty(t, nav.Visits())
}

func TestSend_RefreshFailureFailsWaitersAndRedirectsOnce(t *testing.T) {
	b, c, nav := newSession(t)
	ctx := context.Background()
	const n = 5

	b.ExpireAccess()
	b.RevokeRefresh()
	b.OnRefresh(func() { waitForWaiters(c, n-1) })

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.ListProjects(ctx, nil)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.Error(t, err, "request %d", i)
		assert.Contains(t, err.Error(), "refreshing session", "request %d", i)
	}
	assert.Equal(t, 1, b.RefreshCalls())
	assert.Equal(t, n, b.Calls("/api/projects"), "no request is replayed after a failed refresh")
	assert.Equal(t, []string{DefaultLoginView}, nav.Visits())
}

func TestSend_RetriedRequestIsNotRefreshedAgain(t *testing.T) {
	var apiCalls, refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/always-401", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, nav := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), &Request{Method: http.MethodGet, Path: "/api/always-401"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, int64(2), apiCalls.Load())
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, []string{DefaultLoginView}, nav.Visits())
}

func TestSend_AuthEndpointsAreNeverRefreshed(t *testing.T) {
	b := testbackend.New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()
	b.AddUser(testEmail, testPassword, "Ada")

	c, nav := newTestClient(t, srv.URL)
	nav.location = DefaultLoginView

	err := c.Login(context.Background(), LoginInput{Email: testEmail, Password: "wrong-password"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 0, b.RefreshCalls())
	assert.Empty(t, nav.Visits(), "already on the login view")
}

func TestSend_AuthEndpointRejectionRedirects(t *testing.T) {
	b := testbackend.New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	c, nav := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), &Request{Method: http.MethodPost, Path: "/auth/refresh"})
	require.Error(t, err)

	assert.Equal(t, 1, b.RefreshCalls(), "only the explicit call, never a nested refresh")
	assert.Equal(t, []string{DefaultLoginView}, nav.Visits())
}

func TestSend_SkipAuthRedirectReturnsUnauthorized(t *testing.T) {
	b := testbackend.New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	c, nav := newTestClient(t, srv.URL)
	_, err := c.Send(context.Background(), &Request{
		Method:           http.MethodGet,
		Path:             "/api/projects",
		SkipAuthRedirect: true,
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, 0, b.RefreshCalls())
	assert.Empty(t, nav.Visits())
}

func TestSend_LoggingOutSkipsRefresh(t *testing.T) {
	b, c, nav := newSession(t)

	c.SetLoggingOut(true)
	b.ExpireAccess()

	_, err := c.ListProjects(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, b.RefreshCalls())
	assert.Equal(t, []string{DefaultLoginView}, nav.Visits())
}

func TestSend_WaiterHonorsOwnContext(t *testing.T) {
	b, c, _ := newSession(t)

	release := make(chan struct{})
	b.ExpireAccess()
	b.OnRefresh(func() { <-release })

	leaderDone := make(chan error, 1)
	go func() {
		_, err := c.ListProjects(context.Background(), nil)
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return b.RefreshCalls() == 1 }, 5*time.Second, time.Millisecond)

	waiterCtx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		_, err := c.ListProjects(waiterCtx, nil)
		waiterDone <- err
	}()
	waitForWaiters(c, 1)
	cancel()

	select {
	case err := <-waiterDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter did not return after its context was cancelled")
	}

	close(release)
	assert.NoError(t, <-leaderDone)
}

func TestSend_RefreshSurvivesLeaderCancellation(t *testing.T) {
	b, c, nav := newSession(t)

	release := make(chan struct{})
	b.ExpireAccess()
	b.OnRefresh(func() { <-release })

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := c.ListProjects(leaderCtx, nil)
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return b.RefreshCalls() == 1 }, 5*time.Second, time.Millisecond)

	waiterDone := make(chan error, 1)
	go func() {
		_, err := c.ListProjects(context.Background(), nil)
		waiterDone <- err
	}()
	waitForWaiters(c, 1)

	cancel()
	close(release)

	assert.ErrorIs(t, <-leaderDone, context.Canceled)
	assert.NoError(t, <-waiterDone, "the refresh completes for queued requests")
	assert.Equal(t, 1, b.RefreshCalls())
	assert.Empty(t, nav.Visits())
}

func TestSend_EachAttemptGetsRequestID(t *testing.T) {
	var mu sync.Mutex
	var ids []string
	var first atomic.Bool
	first.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/thing", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(RequestIDHeader))
		mu.Unlock()
		if first.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	resp, err := c.Send(context.Background(), &Request{Method: http.MethodGet, Path: "/api/thing"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
}

func TestSend_ReplaysBody(t *testing.T) {
	b, c, _ := newSession(t)

	b.ExpireAccess()
	p, err := c.CreateProject(context.Background(), CreateProjectInput{Title: "Replayed"})
	require.NoError(t, err)
	assert.Equal(t, "Replayed", p.Title)
	assert.Equal(t, 1, b.RefreshCalls())
}

func TestSend_AcceptStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Conflict"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)

	_, err := c.Send(context.Background(), &Request{Method: http.MethodDelete, Path: "/api/projects/p1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Conflict", apiErr.Message)

	resp, err := c.Send(context.Background(), &Request{
		Method:       http.MethodDelete,
		Path:         "/api/projects/p1",
		AcceptStatus: func(status int) bool { return status == http.StatusConflict },
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSend_NilRequest(t *testing.T) {
	c := New()
	_, err := c.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestRedirectToLogin_OncePerSession(t *testing.T) {
	nav := &countingNavigator{location: "/dashboard"}
	c := New(WithNavigator(nav))

	c.redirectToLogin("first")
	c.redirectToLogin("second")
	nav.Navigate("/dashboard")
	c.redirectToLogin("third")
	assert.Equal(t, []string{DefaultLoginView, "/dashboard"}, nav.Visits())

	c.beginSession()
	c.redirectToLogin("after login")
	assert.Equal(t, []string{DefaultLoginView, "/dashboard", DefaultLoginView}, nav.Visits())
}

func TestRedirectToLogin_SkipsWhenOnLoginView(t *testing.T) {
	nav := &countingNavigator{location: "/signin"}
	c := New(WithNavigator(nav), WithLoginView("/signin"))

	c.redirectToLogin("already there")
	assert.Empty(t, nav.Visits())
	assert.False(t, c.redirected.Load(), "guard stays armed")
}

func TestRedirectToLogin_ConcurrentCallsNavigateOnce(t *testing.T) {
	nav := &countingNavigator{location: "/dashboard"}
	c := New(WithNavigator(nav))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.redirectToLogin("race")
		}()
	}
	wg.Wait()
	assert.Len(t, nav.Visits(), 1)
}

func TestRefreshState_JoinAndSettle(t *testing.T) {
	var s refreshState

	_, lead := s.join()
	require.True(t, lead)

	var waits []<-chan error
	for range 3 {
		w, lead := s.join()
		require.False(t, lead)
		waits = append(waits, w)
	}
	assert.Equal(t, 3, s.pending())

	boom := errors.New("boom")
	assert.Equal(t, 3, s.settle(boom))
	for _, w := range waits {
		assert.Equal(t, boom, <-w)
	}
	assert.Equal(t, 0, s.pending())

	_, lead = s.join()
	assert.True(t, lead, "a new refresh may start once the previous one settled")
	assert.Equal(t, 0, s.settle(nil))
}

func TestRefreshState_ReleasesWaitersInArrivalOrder(t *testing.T) {
	var released []chan<- error
	s := refreshState{release: func(ch chan<- error, err error) {
		released = append(released, ch)
		ch <- err
	}}

	_, lead := s.join()
	require.True(t, lead)

	var enqueued []chan<- error
	for range 5 {
		_, lead := s.join()
		require.False(t, lead)
		enqueued = append(enqueued, s.waiters[len(s.waiters)-1])
	}

	s.settle(nil)
	assert.Equal(t, enqueued, released)
}
