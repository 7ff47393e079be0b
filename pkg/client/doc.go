// Package client provides a Go SDK for the Taskraum REST API.
//
// Taskraum authenticates with short-lived session cookies that are renewed by
// POST /auth/refresh. The Client keeps those cookies in a cookie jar and
// recovers from expired sessions transparently: a request that receives
// HTTP 401 triggers one refresh call, and the request is then replayed once.
//
// # Quick Start
//
//	c := client.New(client.WithBaseURL("http://localhost:8080"))
//	if err := c.Login(ctx, client.LoginInput{Email: "ada@example.com", Password: "secret-pass"}); err != nil {
//	    return err
//	}
//	projects, err := c.ListProjects(ctx, nil)
//
// # Session Refresh
//
// When several requests fail with 401 at the same time, only the first one
// issues the refresh call. The others queue behind it and are released in
// FIFO order once the refresh settles. On success every queued request is
// replayed exactly once; on failure they all receive the refresh error.
//
// A replayed request that fails with 401 again is not refreshed a second
// time. The Client reports it as an unrecoverable auth failure and navigates
// to the login view through the configured Navigator:
//
//	c := client.New(client.WithNavigator(router))
//
// Only the first unrecoverable failure of a session navigates; later ones
// are no-ops until the next successful Login.
//
// # Probes
//
// Requests marked SkipAuthRedirect never refresh and never navigate. Me uses
// this to ask "who am I" without side effects:
//
//	user, err := c.Me(ctx) // user == nil when there is no session
//
// # Logging Out
//
// Logout calls SetLoggingOut(true) before it issues the logout call, so the
// logout request and anything racing with it go straight to the login view
// instead of refreshing the session being torn down.
//
// # Raw Requests
//
// Send accepts any Request and runs it through the same pipeline:
//
//	resp, err := c.Send(ctx, &client.Request{Method: http.MethodGet, Path: "/api/projects"})
package client
