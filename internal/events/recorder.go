package events

import "sync"

// Recorder is a listener pair that keeps every event it receives.
// It is used by tests and by the session command to count outcomes.
type Recorder struct {
	mu        sync.Mutex
	successes []SuccessEvent
	failures  []FailureEvent
}

// Attach registers the recorder on both streams of b.
func (r *Recorder) Attach(b *Bus) {
	b.OnSuccess(r.recordSuccess)
	b.OnFailure(r.recordFailure)
}

func (r *Recorder) recordSuccess(e SuccessEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, e)
}

func (r *Recorder) recordFailure(e FailureEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, e)
}

// Successes returns a copy of the recorded success events.
func (r *Recorder) Successes() []SuccessEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SuccessEvent(nil), r.successes...)
}

// Failures returns a copy of the recorded failure events.
func (r *Recorder) Failures() []FailureEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FailureEvent(nil), r.failures...)
}
