package wms

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client issues WMS requests one at a time against a single service.
type Client struct {
	BaseURL string

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient returns a client whose requests time out after timeout. A
// requestsPerSecond of zero disables throttling.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Get performs a GET request and returns the response body when the service
// answers 200 OK. The caller closes the body.
func (c *Client) Get(ctx context.Context, requestURL string) (io.ReadCloser, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "could not construct request")
	}
	request.Header.Set("User-Agent", "gibs-fetcher")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, "", errors.Wrap(err, "could not fetch response")
	}

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		response.Body.Close()
		return nil, "", errors.Errorf("expected 200, got %d: %s", response.StatusCode, body)
	}

	return response.Body, response.Header.Get("Content-Type"), nil
}

// GetCapabilities fetches and decodes the capabilities document.
func (c *Client) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	capabilitiesURL, err := GetCapabilitiesURL(c.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse service URL")
	}

	body, _, err := c.Get(ctx, capabilitiesURL)
	if err != nil {
		return nil, errors.Wrap(err, "GetCapabilities")
	}
	defer body.Close()

	capabilities, err := ParseCapabilities(body)
	if err != nil {
		return nil, err
	}
	if capabilities.Version != "" && capabilities.Version != "1.3.0" {
		return nil, errors.Errorf("unsupported WMS version %s", capabilities.Version)
	}

	return capabilities, nil
}
