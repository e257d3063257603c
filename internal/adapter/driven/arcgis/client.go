// Package arcgis implements the PortalClient port against the ArcGIS
// REST API (generateToken auth, content item lookup, hosted layer
// overwrite). Logical failures arrive as HTTP 200 with an "error"
// envelope and are mapped to the driven port sentinels.
package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PortalClient = (*Client)(nil)

// Client speaks to one portal. It is unauthenticated; Authenticate
// performs the token handshake and returns a Session.
type Client struct {
	httpClient *http.Client
	baseURL    string // Portal root without trailing slash.
}

// NewClient creates a Client for the given portal URL using the default
// http.Client (library-default timeouts, no retry).
func NewClient(portalURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(portalURL, "/"),
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, portalURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(portalURL, "/"),
	}
}

// apiError is the portal's error envelope, returned inside an HTTP 200.
type apiError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// text flattens the error message and details into one diagnostic string.
func (e *apiError) text() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// tokenResponse is the generateToken response body.
type tokenResponse struct {
	Token   string    `json:"token"`
	Expires int64     `json:"expires"`
	Error   *apiError `json:"error"`
}

// Authenticate performs the generateToken handshake and returns an
// authenticated session. Rejected credentials and an unreachable portal
// both wrap driven.ErrAuthenticationFailed.
func (c *Client) Authenticate(ctx context.Context, username, password string) (driven.PortalSession, error) {
	form := url.Values{
		"username":   {username},
		"password":   {password},
		"client":     {"referer"},
		"referer":    {c.baseURL},
		"expiration": {"60"},
		"f":          {"json"},
	}

	var tr tokenResponse
	if err := c.postForm(ctx, c.baseURL+"/sharing/rest/generateToken", form, &tr); err != nil {
		return nil, fmt.Errorf("%w: %v", driven.ErrAuthenticationFailed, err)
	}
	if tr.Error != nil {
		return nil, fmt.Errorf("%w: %s", driven.ErrAuthenticationFailed, tr.Error.text())
	}
	if tr.Token == "" {
		return nil, fmt.Errorf("%w: portal returned no token", driven.ErrAuthenticationFailed)
	}

	return &Session{client: c, token: tr.Token, username: username}, nil
}

// postForm sends an application/x-www-form-urlencoded POST and decodes
// the JSON response into out.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.decode(req, out)
}

// get sends a GET with the given query values and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", endpoint, err)
	}

	return c.decode(req, out)
}

// decode executes req and unmarshals the response body into out.
// Non-2xx statuses are reported as errors; logical portal errors still
// arrive as 200 and are handled by the callers via the error envelope.
func (c *Client) decode(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}

	return nil
}
