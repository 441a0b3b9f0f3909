// Package task provides the cooperative runtime used by geometry builders.
//
// Long builds receive a [*Context] and call [Context.Update] or
// [Context.Checkpoint] at designed points (per unit, every few thousand
// elements). Each call reports progress, yields the processor so a host can
// interleave other builds, and returns [ErrCancelled] once the underlying
// context.Context is done. A cancelled build is not a failure: callers drop
// the partial result and retry later.
package task

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrCancelled is returned by checkpoints once the build was cancelled.
var ErrCancelled = errors.New("task: cancelled")

// DefaultUpdateInterval is the minimum time between two progress updates.
const DefaultUpdateInterval = 100 * time.Millisecond

// IsCancelled reports whether err signals a cancelled build rather than a
// failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Progress describes how far a build has come.
type Progress struct {
	Message string
	Current int
	Max     int
}

// Fraction returns Current/Max clamped to [0, 1]. It is 0 when Max is unknown.
func (p Progress) Fraction() float64 {
	if p.Max <= 0 {
		return 0
	}
	f := float64(p.Current) / float64(p.Max)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Observer receives progress updates. It is called on the building
// goroutine and must not block.
type Observer func(Progress)

// Option configures a Context.
type Option func(*Context)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(c *Context) {
		c.observer = o
	}
}

// WithUpdateInterval sets the minimum time between two updates reported by
// ShouldUpdate. An interval of 0 makes every ShouldUpdate call return true.
func WithUpdateInterval(d time.Duration) Option {
	return func(c *Context) {
		c.interval = d
	}
}

// Context is the progress and cancellation token threaded through a build.
//
// Context is not safe for concurrent use; every build owns its own.
type Context struct {
	ctx        context.Context
	observer   Observer
	interval   time.Duration
	lastUpdate time.Time
	updates    int
}

// New returns a Context bound to ctx.
func New(ctx context.Context, opts ...Option) *Context {
	c := &Context{
		ctx:        ctx,
		interval:   DefaultUpdateInterval,
		lastUpdate: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Background returns a Context that is never cancelled.
func Background() *Context {
	return New(context.Background())
}

// Context returns the underlying context.Context.
func (c *Context) Context() context.Context { return c.ctx }

// Updates returns how many progress updates were reported.
func (c *Context) Updates() int { return c.updates }

// Checkpoint returns ErrCancelled if the build was cancelled.
func (c *Context) Checkpoint() error {
	select {
	case <-c.ctx.Done():
		return fmt.Errorf("%w: %w", ErrCancelled, c.ctx.Err())
	default:
		return nil
	}
}

// ShouldUpdate reports whether enough time has passed since the last update
// for the builder to report progress and yield.
func (c *Context) ShouldUpdate() bool {
	return time.Since(c.lastUpdate) >= c.interval
}

// Update reports progress, yields the processor and checks for
// cancellation.
func (c *Context) Update(p Progress) error {
	c.lastUpdate = time.Now()
	c.updates++
	if c.observer != nil {
		c.observer(p)
	}
	runtime.Gosched()
	return c.Checkpoint()
}

// Step is the checkpoint of a build loop. It reports progress when an
// update is due and otherwise only checks for cancellation.
func (c *Context) Step(message string, current, max int) error {
	if c.ShouldUpdate() {
		return c.Update(Progress{Message: message, Current: current, Max: max})
	}
	return c.Checkpoint()
}
