// Package http provides the HTTP transport used by the Base44 client: base
// URL resolution, default and per-call headers, bearer-token attachment,
// JSON and multipart encoding, debug logging, and error normalization.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/base44-client/internal/constants"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// Logger is the logging interface consumed by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string

	// Body is JSON-encoded when non-nil and RawBody is unset.
	Body interface{}

	// RawBody bypasses JSON encoding (multipart, binary). ContentType must
	// be set alongside it.
	RawBody     io.Reader
	ContentType string
}

// Response is an API response with its undecoded body.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client is the HTTP transport.
type Client struct {
	baseURL        string
	httpClient     *retryablehttp.Client
	defaultHeaders map[string]string
	userAgent      string
	logger         Logger
	debug          bool
	originURL      func() string
	onAuthRequired func(status int)

	tokenMu sync.RWMutex
	token   string
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithDefaultHeader attaches a header to every outgoing request.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithOriginURLFunc supplies the originating page URL, sent as
// X-Origin-URL on every request while it returns a non-empty string.
func WithOriginURLFunc(fn func() string) Option {
	return func(c *Client) {
		c.originURL = fn
	}
}

// WithAuthRequiredHandler installs the guard hook invoked after every 403
// response. It fires on each 403, not just the first.
func WithAuthRequiredHandler(fn func(status int)) Option {
	return func(c *Client) {
		c.onAuthRequired = fn
	}
}

// WithRetryConfig enables retries for transient failures (>=500, 429, and
// connection errors). The SDK leaves retries off by default.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a transport rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     retryClient,
		defaultHeaders: make(map[string]string),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetToken attaches a bearer token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	c.token = token
}

// ClearToken detaches the bearer token.
func (c *Client) ClearToken() {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	c.token = ""
}

// Token returns the currently attached bearer token, or "".
func (c *Client) Token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()

	return c.token
}

// Do executes the request and returns the response. Any failure, whether a
// transport error or a non-2xx status, is returned as *base44.Error; for
// non-2xx the Response is returned alongside it.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		normalized := base44.FromResponse(0, nil, err)
		c.logError(normalized)

		return nil, normalized
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		normalized := base44.FromResponse(0, nil, fmt.Errorf("reading response body: %w", err))
		c.logError(normalized)

		return nil, normalized
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"bytes":  len(body),
		})
	}

	if httpResp.StatusCode >= nethttp.StatusBadRequest {
		normalized := base44.FromResponse(httpResp.StatusCode, body, nil)
		c.logError(normalized)

		if httpResp.StatusCode == nethttp.StatusForbidden && c.onAuthRequired != nil {
			c.onAuthRequired(httpResp.StatusCode)
		}

		return resp, normalized
	}

	return resp, nil
}

// buildRequest assembles the retryable request with all headers applied.
func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var (
		bodyReader  interface{}
		contentType string
	)

	switch {
	case req.RawBody != nil:
		bodyReader = req.RawBody
		contentType = req.ContentType
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, base44.FromResponse(0, nil, fmt.Errorf("encoding request body: %w", err))
		}

		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, base44.FromResponse(0, nil, fmt.Errorf("creating request: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range c.defaultHeaders {
		httpReq.Header.Set(key, value)
	}

	if c.originURL != nil {
		if origin := c.originURL(); origin != "" {
			httpReq.Header.Set(constants.HeaderOriginURL, origin)
		}
	}

	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// logError reports a normalized failure. Errors are logged regardless of
// debug mode; debug only adds the request/response trace.
func (c *Client) logError(normalized *base44.Error) {
	if c.logger == nil {
		return
	}

	c.logger.Error("request failed", map[string]interface{}{
		"status":  normalized.Status,
		"code":    normalized.Code,
		"message": normalized.Message,
	})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}

// DeleteWithBody performs a DELETE request carrying a JSON body.
func (c *Client) DeleteWithBody(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path, Body: body})
}

// PostMultipart performs a POST encoded as multipart form data. FileUpload
// values become file parts, non-scalar values are JSON-stringified, and
// everything else is written with its string form.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]interface{}) (*Response, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := writeMultipartField(writer, key, fields[key])
		if err != nil {
			return nil, base44.FromResponse(0, nil, err)
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, base44.FromResponse(0, nil, fmt.Errorf("finalizing multipart body: %w", err))
	}

	return c.Do(ctx, &Request{
		Method:      nethttp.MethodPost,
		Path:        path,
		RawBody:     bytes.NewReader(buf.Bytes()),
		ContentType: writer.FormDataContentType(),
	})
}

func writeMultipartField(writer *multipart.Writer, key string, value interface{}) error {
	switch val := value.(type) {
	case base44.FileUpload:
		part, err := writer.CreateFormFile(key, val.Name)
		if err != nil {
			return fmt.Errorf("creating file part %q: %w", key, err)
		}

		_, err = io.Copy(part, val.Reader)
		if err != nil {
			return fmt.Errorf("writing file part %q: %w", key, err)
		}
	case string:
		err := writer.WriteField(key, val)
		if err != nil {
			return fmt.Errorf("writing field %q: %w", key, err)
		}
	case bool, int, int32, int64, float32, float64:
		err := writer.WriteField(key, fmt.Sprintf("%v", val))
		if err != nil {
			return fmt.Errorf("writing field %q: %w", key, err)
		}
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encoding field %q: %w", key, err)
		}

		err = writer.WriteField(key, string(data))
		if err != nil {
			return fmt.Errorf("writing field %q: %w", key, err)
		}
	}

	return nil
}
