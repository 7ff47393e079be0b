package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes an outbound API call.
//
// The body is held as bytes so the same Request can be replayed after a
// session refresh.
type Request struct {
	Method string
	Path   string // relative to the client's base URL, e.g. "/api/projects"
	Query  url.Values
	Header http.Header
	Body   []byte

	// SkipAuthRedirect marks background probes: a 401 is returned to the
	// caller as-is, with no refresh attempt and no login redirect.
	SkipAuthRedirect bool

	// AcceptStatus reports whether a status code counts as success.
	// Defaults to 2xx and 3xx.
	AcceptStatus func(status int) bool
}

// NewJSONRequest builds a Request with a JSON-encoded body.
// A nil payload produces a request without a body.
func NewJSONRequest(method, path string, payload any) (*Request, error) {
	req := &Request{Method: method, Path: path}
	if payload == nil {
		return req, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	req.Body = body
	return req, nil
}

func (r *Request) accepts(status int) bool {
	if r.AcceptStatus != nil {
		return r.AcceptStatus(status)
	}
	return status >= 200 && status < 400
}

// Response is a completed API response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON decodes the response body into v. Empty bodies leave v untouched.
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// submission is a Request on its way through the pipeline. Whether it has
// already been replayed after a refresh is carried by its type, so only the
// client can produce a retriedRequest.
type submission interface {
	request() *Request
}

// originalRequest is a Request as handed in by the caller.
type originalRequest struct{ req *Request }

// retriedRequest is a Request being replayed after a refresh attempt. It is
// never refreshed again.
type retriedRequest struct{ req *Request }

func (s originalRequest) request() *Request { return s.req }
func (s retriedRequest) request() *Request  { return s.req }

func isRetried(s submission) bool {
	_, ok := s.(retriedRequest)
	return ok
}
