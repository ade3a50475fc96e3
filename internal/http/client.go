// Package http is the thin request layer a simulated session uses to talk to
// the portal. It wraps net/http with a base URL, a per-session cookie jar and
// optional per-request event reporting.
package http

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptrace"
	"net/url"
	"time"

	"github.com/wesleyorama2/memberload/internal/events"
)

// Client represents an HTTP client with customizable options
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	bus        *events.Bus
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options.
//
// Unless WithHTTPClient is given, every Client gets its own cookie jar so a
// session keeps its login cookie to itself.
func NewClient(options ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	client := &Client{
		httpClient: &http.Client{Jar: jar},
		headers:    make(map[string]string),
	}

	// Apply options
	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL for the client
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader adds a header to the client
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient replaces the underlying net/http client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCookieJar replaces the cookie jar of the underlying client
func WithCookieJar(jar http.CookieJar) ClientOption {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithRequestEvents reports every request to bus, using the method as the
// request type and the path as the name.
func WithRequestEvents(bus *events.Bus) ClientOption {
	return func(c *Client) {
		c.bus = bus
	}
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET for path
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodGet, path))
}

// PostForm issues a form-encoded POST for path
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPost, path).WithForm(form))
}

// Do executes an HTTP request and returns the response.
//
// Any status code is a valid response; only transport errors are returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.Build(c.baseURL)
	if err != nil {
		return nil, err
	}

	for key, value := range c.headers {
		if httpReq.Header.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}

	timing := TimingInfo{StartTime: time.Now()}
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(timing.StartTime)
		},
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, trace))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		timing.TotalTime = time.Since(timing.StartTime)
		c.reportFailure(req, timing.TotalTime, err)
		return nil, err
	}
	defer httpResp.Body.Close()

	n, err := io.Copy(io.Discard, httpResp.Body)
	timing.TotalTime = time.Since(timing.StartTime)
	if err != nil {
		c.reportFailure(req, timing.TotalTime, err)
		return nil, err
	}

	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		Status:        httpResp.Status,
		Headers:       httpResp.Header,
		ContentLength: n,
		Timing:        timing,
	}
	c.reportSuccess(req, resp)

	return resp, nil
}

func (c *Client) reportSuccess(req *Request, resp *Response) {
	if c.bus == nil {
		return
	}
	c.bus.FireSuccess(events.SuccessEvent{
		RequestType:    req.Method,
		Name:           req.Path,
		ResponseTime:   resp.GetResponseTimeMillis(),
		ResponseLength: resp.ContentLength,
	})
}

func (c *Client) reportFailure(req *Request, elapsed time.Duration, err error) {
	if c.bus == nil {
		return
	}
	c.bus.FireFailure(events.FailureEvent{
		RequestType:  req.Method,
		Name:         req.Path,
		ResponseTime: elapsed.Milliseconds(),
		Err:          err,
	})
}
