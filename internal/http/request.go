package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request represents an HTTP request against the client's base URL.
//
// Path may carry a literal query string ("/app/home/home.html?v=1"); it is
// sent exactly as written.
type Request struct {
	Method  string
	Path    string
	Form    url.Values
	Headers map[string]string
}

// NewRequest creates a new HTTP request
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithForm sets a form-encoded body
func (r *Request) WithForm(form url.Values) *Request {
	r.Form = form
	return r
}

// Build constructs an http.Request from the Request
func (r *Request) Build(baseURL string) (*http.Request, error) {
	target, err := resolve(baseURL, r.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequest(r.Method, target, body)
	if err != nil {
		return nil, err
	}

	if r.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// resolve joins the base URL and a path that may include a query string.
func resolve(baseURL, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if baseURL == "" {
		return "", fmt.Errorf("relative path %q requires a base URL", path)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	joined := *base
	joined.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	joined.RawPath = ""
	joined.RawQuery = ref.RawQuery
	joined.Fragment = ""
	return joined.String(), nil
}
