package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestProgress_Fraction(t *testing.T) {
	tests := []struct {
		p    Progress
		want float64
	}{
		{Progress{Current: 5, Max: 10}, 0.5},
		{Progress{Current: 15, Max: 10}, 1},
		{Progress{Current: -1, Max: 10}, 0},
		{Progress{Current: 3}, 0},
	}
	for _, tt := range tests {
		if got := tt.p.Fraction(); got != tt.want {
			t.Errorf("%+v.Fraction() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestContext_Checkpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(ctx)
	if err := c.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint() = %v, want nil", err)
	}
	cancel()
	err := c.Checkpoint()
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Errorf("Checkpoint() = %v, want ErrCancelled wrapping context.Canceled", err)
	}
	if !IsCancelled(err) {
		t.Error("IsCancelled() = false, want true")
	}
	if IsCancelled(errors.New("boom")) {
		t.Error("IsCancelled(other) = true, want false")
	}
}

func TestContext_Update(t *testing.T) {
	var got []Progress
	c := New(context.Background(),
		WithObserver(func(p Progress) { got = append(got, p) }),
		WithUpdateInterval(0),
	)
	if !c.ShouldUpdate() {
		t.Error("ShouldUpdate() = false with zero interval")
	}
	for i := 0; i < 3; i++ {
		if err := c.Update(Progress{Message: "build", Current: i, Max: 3}); err != nil {
			t.Fatal(err)
		}
	}
	if len(got) != 3 || c.Updates() != 3 {
		t.Errorf("observer saw %d updates, context counted %d; want 3", len(got), c.Updates())
	}

	slow := New(context.Background(), WithUpdateInterval(time.Hour))
	if slow.ShouldUpdate() {
		t.Error("ShouldUpdate() = true right after creation with a long interval")
	}
}

func TestContext_UpdateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(ctx, WithObserver(func(Progress) { cancel() }))
	if err := c.Update(Progress{}); !IsCancelled(err) {
		t.Errorf("Update() = %v, want cancellation", err)
	}
}

// =============================================================================
// Slot
// =============================================================================

func TestContext_Step(t *testing.T) {
	var seen []Progress
	c := New(context.Background(), WithUpdateInterval(time.Hour), WithObserver(func(p Progress) { seen = append(seen, p) }))
	for i := range 10 {
		if err := c.Step("atoms", i, 10); err != nil {
			t.Fatalf("Step() = %v", err)
		}
	}
	if len(seen) != 0 {
		t.Errorf("observer called %d times before the interval elapsed", len(seen))
	}

	c = New(context.Background(), WithUpdateInterval(0), WithObserver(func(p Progress) { seen = append(seen, p) }))
	if err := c.Step("atoms", 3, 10); err != nil {
		t.Fatalf("Step() = %v", err)
	}
	if len(seen) != 1 || seen[0].Current != 3 {
		t.Errorf("progress = %+v, want one update at 3", seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(ctx, WithUpdateInterval(time.Hour)).Step("atoms", 0, 1); !IsCancelled(err) {
		t.Errorf("Step() on cancelled context = %v, want cancellation", err)
	}
}

func TestSlot_AcquireRelease(t *testing.T) {
	var s Slot
	ctx, release, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Busy() {
		t.Error("Busy() = false while held")
	}
	release()
	release()
	if s.Busy() {
		t.Error("Busy() = true after release")
	}
	if ctx.Err() == nil {
		t.Error("holder context should be cancelled after release")
	}
}

func TestSlot_PreemptsHolder(t *testing.T) {
	var s Slot
	first, release1, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var settled atomic.Bool
	go func() {
		<-first.Done()
		time.Sleep(10 * time.Millisecond)
		settled.Store(true)
		release1()
	}()

	second, release2, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer release2()
	if !settled.Load() {
		t.Error("second Acquire returned before the first holder settled")
	}
	if second.Err() != nil {
		t.Error("second holder context should be live")
	}
}

func TestSlot_AcquireContextDone(t *testing.T) {
	var s Slot
	_, release, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The holder never releases on its own, so the waiter gives up.
	if _, _, err := s.Acquire(ctx); !IsCancelled(err) {
		t.Errorf("Acquire() = %v, want cancellation", err)
	}
}
