package http

import (
	"net/http"
	"time"
)

// TimingInfo contains timing details for a request
type TimingInfo struct {
	StartTime       time.Time
	TimeToFirstByte time.Duration
	TotalTime       time.Duration
}

// Response represents an HTTP response. The body has already been drained;
// only its length is kept.
type Response struct {
	StatusCode    int
	Status        string
	Headers       http.Header
	ContentLength int64
	Timing        TimingInfo
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// GetResponseTimeMillis returns the response time in milliseconds
func (r *Response) GetResponseTimeMillis() int64 {
	return r.Timing.TotalTime.Milliseconds()
}
