package client

import (
	"context"
	"net/url"
)

// call sends a JSON request and decodes the JSON response into result.
// payload and result may be nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, result any) error {
	req, err := NewJSONRequest(method, path, payload)
	if err != nil {
		return err
	}
	req.Query = query

	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return resp.DecodeJSON(result)
}

// dateOnly trims an ISO timestamp to its YYYY-MM-DD date.
func dateOnly(s *string) *string {
	if s == nil || len(*s) <= 10 {
		return s
	}
	d := (*s)[:10]
	return &d
}
