// Package canny provides a client for the Canny companies API.
package canny

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// MaxPageSize is the largest limit Canny accepts on companies/list.
const MaxPageSize = 100

// Client defines the Canny operations used by this application.
type Client interface {
	// ListCompanies returns one page of companies starting at skip.
	ListCompanies(ctx context.Context, limit, skip int) (*ListResponse, error)
	// UpdateCompany pushes the full company record back to Canny.
	UpdateCompany(ctx context.Context, company Company) error
}

// Option configures the Canny client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default throttle of 5 req/s. A non-positive
// value disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Canny client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://canny.io/api/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// errorBody is the shape Canny uses for failures.
type errorBody struct {
	Error string `json:"error"`
}

// do sends req and returns the body of a 2xx response. Non-2xx responses
// become errors carrying the status and Canny's error message.
func (c *httpClient) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "canny: rate limit")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "canny: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "canny: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return nil, eris.Errorf("canny: unexpected status %d: %s", resp.StatusCode, eb.Error)
		}
		return nil, eris.Errorf("canny: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func (c *httpClient) ListCompanies(ctx context.Context, limit, skip int) (*ListResponse, error) {
	form := url.Values{}
	form.Set("apiKey", c.apiKey)
	form.Set("limit", strconv.Itoa(limit))
	form.Set("skip", strconv.Itoa(skip))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/companies/list", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "canny: create list request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "canny: list companies (skip=%d)", skip)
	}

	var result ListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "canny: unmarshal list response")
	}

	return &result, nil
}

func (c *httpClient) UpdateCompany(ctx context.Context, company Company) error {
	payload, err := json.Marshal(company.payload(c.apiKey))
	if err != nil {
		return eris.Wrap(err, "canny: marshal company")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/companies/update", bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "canny: create update request")
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(ctx, req); err != nil {
		return eris.Wrapf(err, "canny: update company %q", company.Name)
	}

	return nil
}
