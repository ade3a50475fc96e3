package http

import (
	"io"
	"net/url"
	"testing"
)

func TestRequest_Build(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		baseURL     string
		form        url.Values
		expectedURL string
	}{
		{
			name:        "Simple GET request",
			method:      "GET",
			path:        "/Account/Register",
			baseURL:     "https://portal.example.com",
			expectedURL: "https://portal.example.com/Account/Register",
		},
		{
			name:        "Literal version query is kept",
			method:      "GET",
			path:        "/app/home/home.html?v=2019.6.4.1",
			baseURL:     "https://portal.example.com",
			expectedURL: "https://portal.example.com/app/home/home.html?v=2019.6.4.1",
		},
		{
			name:        "Trailing slash in base URL",
			method:      "GET",
			path:        "/App/Mail/mailHistory.html?v=2019.6.4.1",
			baseURL:     "https://portal.example.com/",
			expectedURL: "https://portal.example.com/App/Mail/mailHistory.html?v=2019.6.4.1",
		},
		{
			name:        "Base URL with path prefix",
			method:      "GET",
			path:        "/Account/Register",
			baseURL:     "https://portal.example.com/qa",
			expectedURL: "https://portal.example.com/qa/Account/Register",
		},
		{
			name:        "Form POST",
			method:      "POST",
			path:        "/Account/Login",
			baseURL:     "https://portal.example.com",
			form:        url.Values{"MainContent_Username": {"u"}},
			expectedURL: "https://portal.example.com/Account/Login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(tt.method, tt.path)
			if tt.form != nil {
				req.WithForm(tt.form)
			}

			httpReq, err := req.Build(tt.baseURL)
			if err != nil {
				t.Fatalf("Error building request: %v", err)
			}

			if httpReq.URL.String() != tt.expectedURL {
				t.Errorf("Expected URL %s, got %s", tt.expectedURL, httpReq.URL.String())
			}
			if httpReq.Method != tt.method {
				t.Errorf("Expected method %s, got %s", tt.method, httpReq.Method)
			}

			if tt.form != nil {
				if ct := httpReq.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
					t.Errorf("Expected form content type, got %s", ct)
				}
				body, _ := io.ReadAll(httpReq.Body)
				if string(body) != tt.form.Encode() {
					t.Errorf("Expected body %s, got %s", tt.form.Encode(), string(body))
				}
			} else if httpReq.Body != nil {
				t.Errorf("Expected no body")
			}
		})
	}
}

func TestRequest_BuildErrors(t *testing.T) {
	if _, err := NewRequest("GET", "/users").Build(""); err == nil {
		t.Error("Expected error for relative path without base URL")
	}
	if _, err := NewRequest("GET", "/users").Build("://bad"); err == nil {
		t.Error("Expected error for invalid base URL")
	}
}

func TestRequest_AbsolutePath(t *testing.T) {
	httpReq, err := NewRequest("GET", "https://other.example.com/x?v=1").Build("https://portal.example.com")
	if err != nil {
		t.Fatalf("Error building request: %v", err)
	}
	if httpReq.URL.Host != "other.example.com" {
		t.Errorf("Expected absolute URL to win, got %s", httpReq.URL.String())
	}
}

func TestRequest_WithHeader(t *testing.T) {
	httpReq, err := NewRequest("GET", "/x").WithHeader("X-Test", "1").Build("https://portal.example.com")
	if err != nil {
		t.Fatalf("Error building request: %v", err)
	}
	if httpReq.Header.Get("X-Test") != "1" {
		t.Errorf("Expected header X-Test: 1, got %s", httpReq.Header.Get("X-Test"))
	}
}
