// Package events provides the request event bus that timed calls report to.
//
// A Bus carries two named streams, request-success and request-failure.
// Listeners are attached explicitly and fire synchronously in the order they
// were registered. A single Bus is usually shared by every session in the
// process, so all methods are safe for concurrent use.
package events

import (
	"sync"
)

// SuccessEvent is emitted once for every call that completed normally.
type SuccessEvent struct {
	// RequestType tags the kind of call (e.g. "CUSTOM", "GET", "POST")
	RequestType string `json:"requestType"`

	// Name identifies the call (action name or request path)
	Name string `json:"name"`

	// ResponseTime is the elapsed wall-clock time in whole milliseconds
	ResponseTime int64 `json:"responseTime"`

	// ResponseLength is the payload size in bytes (0 for custom calls)
	ResponseLength int64 `json:"responseLength"`

	// Tag is the invocation context label of the call
	Tag string `json:"tag,omitempty"`
}

// FailureEvent is emitted once for every call that returned an error.
type FailureEvent struct {
	RequestType  string `json:"requestType"`
	Name         string `json:"name"`
	ResponseTime int64  `json:"responseTime"`
	Err          error  `json:"-"`
	Tag          string `json:"tag,omitempty"`
}

// SuccessListener receives request-success events.
type SuccessListener func(SuccessEvent)

// FailureListener receives request-failure events.
type FailureListener func(FailureEvent)

// Bus is a publish/subscribe registry for request events.
type Bus struct {
	mu        sync.RWMutex
	onSuccess []SuccessListener
	onFailure []FailureListener
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// OnSuccess attaches a listener to the request-success stream.
// Nil listeners are ignored.
func (b *Bus) OnSuccess(l SuccessListener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSuccess = append(b.onSuccess, l)
}

// OnFailure attaches a listener to the request-failure stream.
// Nil listeners are ignored.
func (b *Bus) OnFailure(l FailureListener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFailure = append(b.onFailure, l)
}

// FireSuccess delivers e to every success listener in registration order.
func (b *Bus) FireSuccess(e SuccessEvent) {
	b.mu.RLock()
	listeners := b.onSuccess
	b.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}

// FireFailure delivers e to every failure listener in registration order.
func (b *Bus) FireFailure(e FailureEvent) {
	b.mu.RLock()
	listeners := b.onFailure
	b.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}

// Listeners returns the number of attached success and failure listeners.
func (b *Bus) Listeners() (success, failure int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.onSuccess), len(b.onFailure)
}
