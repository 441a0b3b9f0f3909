package task

import (
	"context"
	"fmt"
	"sync"
)

// Slot admits at most one active build. Acquiring a busy slot cancels the
// current holder and waits until it has released the slot.
//
// The zero value is ready to use. Slot must not be copied after first use.
type Slot struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Acquire cancels any in-flight holder, waits for it to settle and takes
// the slot. The returned context is cancelled when a later Acquire preempts
// this holder. release must be called exactly once when the build settles;
// extra calls are no-ops.
func (s *Slot) Acquire(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	for s.done != nil {
		cancel, done := s.cancel, s.done
		s.mu.Unlock()
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		s.mu.Lock()
	}
	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	release := sync.OnceFunc(func() {
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
		cancel()
		close(done)
	})
	return cctx, release, nil
}

// Busy reports whether a holder currently owns the slot.
func (s *Slot) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Cancel requests cancellation of the current holder without waiting.
func (s *Slot) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
