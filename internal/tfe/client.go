// Package tfe talks to the Terraform Cloud / Enterprise v2 API.
package tfe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/klauspost/compress/gzip"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://app.terraform.io/api/v2"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 30
)

var (
	defaultHeaders = map[string]string{
		"User-Agent":      "whichworkspace/0.1.0",
		"Accept":          "application/vnd.api+json",
		"Accept-Encoding": "gzip",
	}
)

type Config struct {
	BaseURL string
	Token   string
	Headers map[string]string
	Timeout time.Duration

	// RateLimit is the number of requests per second allowed on the wire.
	RateLimit int

	// Cache stores responses between requests. Nil disables caching.
	Cache httpcache.Cache
}

// Client sends authenticated GET requests through a response cache and a shared rate limiter.
// A single Client must be used for a whole run so that every request shares the same limiter.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    map[string]string
	logger     *zap.Logger
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
	logger    *zap.Logger
}

// WithTransport replaces the pooled transport used for wire requests. The rate limiter and the
// cache are still layered on top of it.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, &URLError{Raw: cfg.BaseURL, Err: err}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &URLError{Raw: cfg.BaseURL, Err: fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)}
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required")
	}

	options := clientOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}

	headers := lo.Assign(defaultHeaders, cfg.Headers)
	headers["Authorization"] = "Bearer " + cfg.Token

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	var transport http.RoundTripper = cleanhttp.DefaultPooledTransport()
	if options.transport != nil {
		transport = options.transport
	}

	transport = newRateLimitedTransport(rateLimit, transport)
	if cfg.Cache != nil {
		transport = &httpcache.Transport{
			Transport:           transport,
			Cache:               cfg.Cache,
			MarkCachedResponses: true,
		}
	}

	return &Client{
		baseURL: parsedURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		headers: headers,
		logger:  options.logger,
	}, nil
}

func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Get requests the given path below the base URL and decodes the JSON body into v.
// segments are path-escaped individually.
func (c *Client) Get(ctx context.Context, segments []string, params url.Values, v any) error {
	reqURL := c.buildURL(segments, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &URLError{Raw: reqURL, Err: err}
	}

	for k, val := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, val)
		}
	}

	c.logger.Debug("sending request", zap.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: req.Method, URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Header.Get(httpcache.XFromCache) != "" {
		c.logger.Debug("response served from cache", zap.String("url", reqURL))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &TransportError{
			Method:     req.Method,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	// The body is read to the end so the cache sees EOF and stores the response.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: req.Method, URL: reqURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	body, err := decompress(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return &DecodeError{URL: reqURL, Err: err}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: reqURL, Err: err}
	}

	return nil
}

func (c *Client) buildURL(segments []string, params url.Values) string {
	escaped := lo.Map(segments, func(s string, _ int) string {
		return url.PathEscape(s)
	})
	// Collection endpoints are addressed with a trailing slash.
	escaped = append(escaped, "/")

	fullURL := c.baseURL.JoinPath(escaped...)
	if len(params) > 0 {
		fullURL.RawQuery = params.Encode()
	}

	return fullURL.String()
}

func decompress(contentEncoding string, raw []byte) ([]byte, error) {
	if contentEncoding != "gzip" {
		return raw, nil
	}

	gzipReader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gzipReader.Close() }()

	body, err := io.ReadAll(gzipReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %w", err)
	}

	return body, nil
}
