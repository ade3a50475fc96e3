package scenario

import (
	"context"
	"math/rand"
	"time"
)

// Harness-level defaults.
const (
	DefaultHost    = "https://membersqa.flmedicaidmanagedcare.com"
	DefaultMinWait = 5000 * time.Millisecond
	DefaultMaxWait = 15000 * time.Millisecond
)

// User holds the static values a harness reads to drive sessions: the target
// host and the bounds of the wait between two actions.
type User struct {
	Host    string
	MinWait time.Duration
	MaxWait time.Duration
}

// DefaultUser returns the portal QA user profile.
func DefaultUser() User {
	return User{
		Host:    DefaultHost,
		MinWait: DefaultMinWait,
		MaxWait: DefaultMaxWait,
	}
}

// WaitTime draws a wait uniformly from [MinWait, MaxWait].
func (u User) WaitTime(rng *rand.Rand) time.Duration {
	if u.MaxWait <= u.MinWait {
		return u.MinWait
	}
	return u.MinWait + time.Duration(rng.Int63n(int64(u.MaxWait-u.MinWait)+1))
}

// DriveOptions controls Drive.
type DriveOptions struct {
	// Iterations is the number of actions to run between login and logout
	Iterations int

	// Wait returns the pause before each action; nil means no pause
	Wait func() time.Duration
}

// Drive runs one session end to end: OnStart, Iterations picked actions
// and OnStop. OnStop runs even when ctx is cancelled during a wait, in
// which case the context error is returned.
func Drive(ctx context.Context, s *Session, p *Picker, opts DriveOptions) error {
	s.OnStart(ctx)

	var err error
	for i := 0; i < opts.Iterations; i++ {
		if opts.Wait != nil {
			if err = sleep(ctx, opts.Wait()); err != nil {
				break
			}
		}
		s.Execute(ctx, p.Next())
	}

	s.OnStop(context.WithoutCancel(ctx))
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
