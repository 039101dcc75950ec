// Package http is the outgoing HTTP client the storefront uses to reach
// identity providers.
//
// Usage:
//
//	resp, err := http.Get(jwksURL).
//	    WithContext(ctx).
//	    Timeout(5 * time.Second).
//	    Retry(3, 200*time.Millisecond).
//	    Send()
//
//	var set jose.JSONWebKeySet
//	err = resp.JSON(&set)
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/cubeshop/pkg/logger"
)

const maxBodyBytes = 1 << 20

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every request that does not set Client.
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

// Request is a fluent GET/POST builder with retry and per-attempt timeout.
type Request struct {
	method    string
	url       string
	headers   map[string]string
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	ctx       context.Context
	client    *gohttp.Client
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		retries:   1,
		retryWait: 200 * time.Millisecond,
		ctx:       context.Background(),
	}
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the initial backoff, which
// doubles after each failure. Transport errors and 5xx answers are retried.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	if n < 1 {
		n = 1
	}
	r.retries = n
	r.retryWait = wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Client sends the request through c instead of DefaultClient. A nil c is
// ignored.
func (r *Request) Client(c *gohttp.Client) *Request {
	if c != nil {
		r.client = c
	}
	return r
}

// Send executes the request. A non-2xx answer that is not retried is
// returned as a Response, not an error.
func (r *Request) Send() (*Response, error) {
	var (
		resp    *Response
		lastErr error
	)
	backoff := r.retryWait

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, lastErr = r.do()
		if lastErr == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
		}
		if attempt == r.retries {
			break
		}

		logger.Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", backoff, "error", lastErr)

		select {
		case <-r.ctx.Done():
			return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, r.ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if resp != nil {
		return resp, nil
	}
	return nil, fmt.Errorf("http: all %d attempts failed for %s %s: %w", r.retries, r.method, r.url, lastErr)
}

func (r *Request) do() (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	client := r.client
	if client == nil {
		client = DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

// Response is a fully read HTTP answer.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// Throw returns an error if the response status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: unexpected status %d", r.StatusCode)
	}
	return nil
}
