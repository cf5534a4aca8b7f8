// Package baubuddy provides a client for the Baubuddy vehicle API: login,
// active-vehicle listing, and label color lookup.
package baubuddy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/vero-group/fleet-cli/internal/model"
)

// Client defines the authoritative vehicle source operations.
type Client interface {
	// ActiveVehicles returns the authoritative active-vehicle record set.
	ActiveVehicles(ctx context.Context) ([]model.Vehicle, error)
	// LabelColor resolves one label identifier to a color code. An unknown
	// label yields "" and no error.
	LabelColor(ctx context.Context, labelID string) (string, error)
}

// Credentials holds the login payload and the pre-shared basic auth key the
// login endpoint expects alongside it.
type Credentials struct {
	Username string
	Password string
	AuthKey  string // value for the login Authorization header, e.g. "Basic ..."
}

// Option configures the Baubuddy client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLabelRate caps label lookups at n requests per second.
func WithLabelRate(n int) Option {
	return func(c *httpClient) {
		c.labelLimiter = rate.NewLimiter(rate.Limit(n), 1)
	}
}

type httpClient struct {
	creds        Credentials
	baseURL      string
	http         *http.Client
	labelLimiter *rate.Limiter
	token        string
}

// NewClient creates a Baubuddy API client. The login handshake runs lazily
// on the first call and the bearer token is kept for the client's lifetime.
func NewClient(creds Credentials, opts ...Option) Client {
	c := &httpClient{
		creds:        creds,
		baseURL:      "https://api.baubuddy.de",
		labelLimiter: rate.NewLimiter(rate.Limit(10), 1),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// doJSON executes a request with exponential backoff on transient statuses
// and decodes the response body into out. notFoundOK treats a 404 as an
// empty result rather than a failure.
func (c *httpClient) doJSON(ctx context.Context, req *http.Request, out any, notFoundOK bool) error {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return eris.Wrap(bodyErr, "baubuddy: rewind request body")
			}
			retryReq.Body = body
		}

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return eris.Wrap(lastErr, "baubuddy: request failed")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("baubuddy: status %d", resp.StatusCode)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		defer resp.Body.Close()

		if notFoundOK && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("baubuddy: unexpected status %d for %s", resp.StatusCode, req.URL.Path)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return eris.Wrap(err, "baubuddy: decode response")
		}
		return nil
	}

	return eris.Wrap(lastErr, "baubuddy: request failed")
}

// login performs the token handshake once and caches the bearer token.
func (c *httpClient) login(ctx context.Context) error {
	if c.token != "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"username": c.creds.Username,
		"password": c.creds.Password,
	})
	if err != nil {
		return eris.Wrap(err, "baubuddy: marshal login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/index.php/login", bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "baubuddy: create login request")
	}
	req.Header.Set("Authorization", c.creds.AuthKey)
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		OAuth struct {
			AccessToken string `json:"access_token"`
		} `json:"oauth"`
	}
	if err := c.doJSON(ctx, req, &result, false); err != nil {
		return eris.Wrap(err, "baubuddy: login")
	}
	if result.OAuth.AccessToken == "" {
		return eris.New("baubuddy: login returned no access token")
	}

	c.token = result.OAuth.AccessToken
	return nil
}

func (c *httpClient) ActiveVehicles(ctx context.Context) ([]model.Vehicle, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/dev/index.php/v1/vehicles/select/active", nil)
	if err != nil {
		return nil, eris.Wrap(err, "baubuddy: create vehicles request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	var raw []map[string]any
	if err := c.doJSON(ctx, req, &raw, false); err != nil {
		return nil, eris.Wrap(err, "baubuddy: fetch active vehicles")
	}

	records := make([]model.Vehicle, 0, len(raw))
	for _, row := range raw {
		rec := make(model.Vehicle, len(row))
		for k, v := range row {
			rec[k] = stringify(v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *httpClient) LabelColor(ctx context.Context, labelID string) (string, error) {
	if err := c.login(ctx); err != nil {
		return "", err
	}
	if err := c.labelLimiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "baubuddy: label rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/dev/index.php/v1/labels/"+labelID, nil)
	if err != nil {
		return "", eris.Wrap(err, "baubuddy: create label request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	// The endpoint answers with a one-element list for the id.
	var labels []struct {
		ColorCode string `json:"colorCode"`
	}
	if err := c.doJSON(ctx, req, &labels, true); err != nil {
		return "", eris.Wrapf(err, "baubuddy: fetch label %s", labelID)
	}
	if len(labels) == 0 {
		return "", nil
	}
	return labels[0].ColorCode, nil
}

// stringify flattens a decoded JSON value to the record's string form.
// null becomes the empty string; numbers drop a trailing ".0" the way the
// upstream renders integers.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
