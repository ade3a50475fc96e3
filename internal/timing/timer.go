// Package timing wraps units of work, measures how long they take and
// reports the outcome to an events.Bus.
//
// A wrapped call never propagates its error. Instead the caller gets a
// Result describing what happened, and exactly one event is fired on the
// bus: request-success when the call completed, request-failure otherwise.
package timing

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/wesleyorama2/memberload/internal/events"
)

// RequestTypeCustom tags events produced by wrapped calls, as opposed to
// events reported for individual HTTP requests.
const RequestTypeCustom = "CUSTOM"

// Result is the outcome of a timed call.
type Result[T any] struct {
	// OK is true when the call completed without error
	OK bool

	// Duration is the elapsed wall-clock time
	Duration time.Duration

	// Value is the call's return value; zero when OK is false
	Value T

	// Err is the error the call returned, nil when OK is true
	Err error
}

// Millis returns the duration in whole milliseconds.
func (r Result[T]) Millis() int64 {
	return millis(r.Duration)
}

// PanicError is reported when a wrapped call panics.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Timer times calls and reports them to a bus.
type Timer struct {
	bus *events.Bus
	now func() time.Time
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

// NewTimer creates a Timer reporting to bus. It panics if bus is nil, since
// every timed call must have somewhere to report to.
func NewTimer(bus *events.Bus, opts ...Option) *Timer {
	if bus == nil {
		panic("timing: nil event bus")
	}
	t := &Timer{
		bus: bus,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Time executes fn under the name and reports it to t's bus.
//
// The event tag is the name of the function that called Time.
func Time[T any](t *Timer, name string, fn func() (T, error)) Result[T] {
	return measure(t, name, callerTag(1), fn)
}

// Run is Time for calls that only return an error.
func (t *Timer) Run(name string, fn func() error) Result[struct{}] {
	return measure(t, name, callerTag(1), func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func measure[T any](t *Timer, name, tag string, fn func() (T, error)) Result[T] {
	start := t.now()
	value, err := invoke(fn)
	elapsed := t.now().Sub(start)

	if err != nil {
		t.bus.FireFailure(events.FailureEvent{
			RequestType:  RequestTypeCustom,
			Name:         name,
			ResponseTime: millis(elapsed),
			Err:          err,
			Tag:          tag,
		})
		return Result[T]{Duration: elapsed, Err: err}
	}

	t.bus.FireSuccess(events.SuccessEvent{
		RequestType:    RequestTypeCustom,
		Name:           name,
		ResponseTime:   millis(elapsed),
		ResponseLength: 0,
		Tag:            tag,
	})
	return Result[T]{OK: true, Duration: elapsed, Value: value}
}

func invoke[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, &PanicError{Value: r}
		}
	}()
	return fn()
}

func millis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Millisecond)
}

// callerTag returns the short name of the function skip frames above its
// caller, e.g. "OnStart" for scenario.(*Session).OnStart.
func callerTag(skip int) string {
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip+2, pcs) == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	if frame.Function == "" {
		return "unknown"
	}
	return shortFuncName(frame.Function)
}

// shortFuncName strips the import path, package, receiver and closure
// suffixes from a fully qualified function name.
func shortFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	parts := strings.Split(full, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	kept := parts[:0]
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, "(") || isClosure(p) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return "unknown"
	}
	return strings.Join(kept, ".")
}

func isClosure(segment string) bool {
	digits := strings.TrimPrefix(segment, "func")
	if digits == segment || digits == "" {
		return false
	}
	return strings.Trim(digits, "0123456789") == ""
}
