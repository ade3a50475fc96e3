// Package scenario defines the members portal user session: a login at
// start, a weighted set of page-browsing actions, and a logout at stop.
//
// A Session only declares and executes behavior. Deciding how many
// sessions run, which action comes next and how long to wait between
// actions belongs to the load harness driving it.
package scenario

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wesleyorama2/memberload/internal/credentials"
	mhttp "github.com/wesleyorama2/memberload/internal/http"
	"github.com/wesleyorama2/memberload/internal/timing"
)

// Names the login and logout calls are reported under.
const (
	LoginName  = "log_in"
	LogoutName = "log_out"
)

// Phase represents the lifecycle phase of a session.
type Phase int32

const (
	// PhaseIdle indicates the session has not started.
	PhaseIdle Phase = iota
	// PhaseStarting indicates the login call is in progress.
	PhaseStarting
	// PhaseSteady indicates the session is running actions.
	PhaseSteady
	// PhaseStopped indicates the logout call has been issued.
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseSteady:
		return "steady"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Result is what every timed session call returns.
type Result = timing.Result[struct{}]

// Task is the harness-facing form of an action.
type Task struct {
	Name   string
	Weight int
	Fn     func(ctx context.Context) Result
}

// Session is one simulated user. Its methods must be called from a single
// goroutine; different sessions share nothing but the event bus.
type Session struct {
	ID string

	client  *mhttp.Client
	creds   credentials.Source
	timer   *timing.Timer
	logger  *zap.Logger
	actions []Action

	phase atomic.Int32
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActions replaces the default action catalog.
func WithActions(actions []Action) SessionOption {
	return func(s *Session) {
		s.actions = actions
	}
}

// WithID sets the session identifier used in logs.
func WithID(id string) SessionOption {
	return func(s *Session) {
		s.ID = id
	}
}

// NewSession creates a session issuing requests through client, reading
// credentials from creds and reporting every call through timer.
func NewSession(client *mhttp.Client, creds credentials.Source, timer *timing.Timer, opts ...SessionOption) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		client:  client,
		creds:   creds,
		timer:   timer,
		logger:  zap.NewNop(),
		actions: Actions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.ID))
	return s
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

// Actions returns the session's action catalog.
func (s *Session) Actions() []Action {
	return s.actions
}

// OnStart logs the user in. A failed login is reported and the session
// still moves on to its steady phase.
func (s *Session) OnStart(ctx context.Context) Result {
	s.phase.Store(int32(PhaseStarting))
	res := s.timer.Run(LoginName, func() error {
		return s.postAccount(ctx, LoginPath)
	})
	s.phase.Store(int32(PhaseSteady))
	s.logger.Debug("session started", zap.Bool("ok", res.OK), zap.Int64("ms", res.Millis()))
	return res
}

// OnStop logs the user out, re-reading the credentials source.
func (s *Session) OnStop(ctx context.Context) Result {
	res := s.timer.Run(LogoutName, func() error {
		return s.postAccount(ctx, LogoutPath)
	})
	s.phase.Store(int32(PhaseStopped))
	s.logger.Debug("session stopped", zap.Bool("ok", res.OK), zap.Int64("ms", res.Millis()))
	return res
}

// Execute runs every step of a in order. The first failing step ends the
// action; the failure is reported once under the action's name.
func (s *Session) Execute(ctx context.Context, a Action) Result {
	res := s.timer.Run(a.Name, func() error {
		for _, step := range a.Steps {
			if _, err := s.client.Do(ctx, mhttp.NewRequest(step.Method, step.Path)); err != nil {
				return fmt.Errorf("%s %s: %w", step.Method, step.Path, err)
			}
		}
		return nil
	})

	if res.OK && a.Note != "" {
		s.logger.Debug(a.Note, zap.String("action", a.Name))
	}
	return res
}

// Tasks returns the action catalog bound to this session.
func (s *Session) Tasks() []Task {
	tasks := make([]Task, 0, len(s.actions))
	for _, a := range s.actions {
		a := a
		tasks = append(tasks, Task{
			Name:   a.Name,
			Weight: a.Weight,
			Fn: func(ctx context.Context) Result {
				return s.Execute(ctx, a)
			},
		})
	}
	return tasks
}

// postAccount posts the current credentials to an account endpoint. The
// credentials are read at call time.
func (s *Session) postAccount(ctx context.Context, path string) error {
	creds, err := s.creds.Load()
	if err != nil {
		return err
	}
	_, err = s.client.PostForm(ctx, path, creds.Form())
	return err
}
