// Package commerce provides catalog and cart implementations backed by
// a commercetools project, plus in-memory stand-ins for demo mode.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/hammamikhairi/voxcart/internal/logger"
)

// Env var names for commercetools credentials.
const (
	EnvProjectKey   = "CTP_PROJECT_KEY"
	EnvClientID     = "CTP_CLIENT_ID"
	EnvClientSecret = "CTP_CLIENT_SECRET"
	EnvAuthURL      = "CTP_AUTH_URL"
	EnvAPIURL       = "CTP_API_URL"
	EnvScopes       = "CTP_SCOPES"
)

// ClientOption configures the commercetools client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client. Used in tests to bypass
// the OAuth transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLocale sets the locale used for localized fields.
func WithLocale(locale string) ClientOption {
	return func(c *Client) {
		c.locale = locale
	}
}

// Credentials holds everything needed to reach a commercetools project.
type Credentials struct {
	ProjectKey   string
	ClientID     string
	ClientSecret string
	AuthURL      string
	APIURL       string
	Scopes       []string
}

// Client is a minimal commercetools API client. Authentication uses the
// OAuth2 client-credentials flow; the token source refreshes tokens
// transparently.
type Client struct {
	projectKey string
	apiURL     string
	locale     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a commercetools client for the given project.
func NewClient(creds Credentials, log *logger.Logger, opts ...ClientOption) *Client {
	oauth := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.AuthURL + "/oauth/token",
		Scopes:       creds.Scopes,
	}

	c := &Client{
		projectKey: creds.ProjectKey,
		apiURL:     creds.APIURL,
		locale:     "en",
		httpClient: oauth.Client(context.Background()),
		log:        log,
	}
	c.httpClient.Timeout = 15 * time.Second

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do runs one API request against the project and decodes the JSON
// response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := fmt.Sprintf("%s/%s%s", c.apiURL, c.projectKey, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("commerce: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// APIError is a non-2xx response from the commerce API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce api error %d: %s", e.StatusCode, e.Body)
}

// IsConflict reports whether the error is a version conflict (409),
// meaning the cart changed underneath us and the request should be
// replayed against the fresh version.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether the error is a 404 from the commerce API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
