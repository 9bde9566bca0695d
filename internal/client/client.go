package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is where the Todo server listens by default.
	DefaultBaseURL = "http://localhost:7148"
	// DefaultTimeout is the per-request timeout when none is configured.
	DefaultTimeout = 100 * time.Second
	// DefaultMaxResponseBufferSize caps how many response bytes are buffered.
	DefaultMaxResponseBufferSize int64 = 2147483647
)

// ErrResponseTooLarge is returned when a body exceeds the configured buffer size.
var ErrResponseTooLarge = errors.New("response body exceeds max response buffer size")

// Client is an HTTP client for the Todo API with configurable timeout,
// default headers and response buffering. It is safe for concurrent use.
type Client struct {
	httpClient            *http.Client
	baseURL               *url.URL
	timeout               time.Duration
	maxResponseBufferSize int64
	defaultHeaders        http.Header
	limiter               *rate.Limiter
	configErr             error
}

type Option func(*Client)

// New builds a client. An invalid base URL surfaces as an error from every request.
func New(opts ...Option) *Client {
	c := &Client{
		timeout:               DefaultTimeout,
		maxResponseBufferSize: DefaultMaxResponseBufferSize,
		defaultHeaders:        make(http.Header),
	}
	c.baseURL, _ = url.Parse(DefaultBaseURL)
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// WithBaseURL sets the address relative paths are resolved against.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			c.configErr = fmt.Errorf("invalid base URL %q", raw)
			return
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u
	}
}

// WithTimeout bounds each request, including reading the body. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxResponseBufferSize caps buffered response bodies at n bytes.
func WithMaxResponseBufferSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseBufferSize = n
		}
	}
}

// WithDefaultHeader adds a header sent with every request.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.defaultHeaders.Add(key, value)
	}
}

// WithDefaultHeaders adds several headers sent with every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders.Add(k, v)
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.defaultHeaders.Set("User-Agent", ua)
	}
}

// WithAccept appends a media type to the Accept header.
func WithAccept(mediaType string) Option {
	return func(c *Client) {
		c.defaultHeaders.Add("Accept", mediaType)
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) MaxResponseBufferSize() int64 {
	return c.maxResponseBufferSize
}

// DefaultHeaders returns a copy of the headers sent with every request.
func (c *Client) DefaultHeaders() http.Header {
	return c.defaultHeaders.Clone()
}

// Err reports a configuration error recorded by an option.
func (c *Client) Err() error {
	return c.configErr
}

// Do sends a request to path (relative to the base URL). A non-nil body is
// encoded as JSON. Non-2xx statuses are not errors here; see the typed calls.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	if c.configErr != nil {
		return nil, c.configErr
	}
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.defaultHeaders {
		req.Header[k] = append([]string(nil), vs...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxResponseBufferSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(respBody)) > c.maxResponseBufferSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxResponseBufferSize)
	}

	return &Response{
		Method:     method,
		URL:        target,
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       respBody,
		Duration:   time.Since(start),
	}, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}
