package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := NewCronScheduler("0 7 * * *", nil, false).Validate(); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := NewCronScheduler("every morning", nil, false).Validate(); err == nil {
		t.Fatalf("invalid expression accepted")
	}
}

func TestNextHonoursLocation(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	s := NewCronScheduler("0 7 * * *", berlin, false)
	from := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	next, err := s.Next(from)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := time.Date(2026, time.January, 11, 7, 0, 0, 0, berlin)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("nope", nil, false)
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop after failed start: %v", err)
	}
}

func TestStartRunsJob(t *testing.T) {
	t.Parallel()

	var runs int32
	fired := make(chan struct{}, 8)
	s := NewCronScheduler("@every 1s", nil, true)

	err := s.Start(context.Background(), func(time.Time) {
		atomic.AddInt32(&runs, 1)
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatalf("job did not fire (runs=%d)", atomic.LoadInt32(&runs))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestContextCancelStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("@every 1s", nil, false)
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		stopped := s.cron == nil
		s.mu.Unlock()
		if stopped {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("scheduler still running after cancel")
}

func TestStartupRunSkipsOverlappingTicks(t *testing.T) {
	t.Parallel()

	var runs int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	s := NewCronScheduler("@every 1s", nil, true)

	err := s.Start(context.Background(), func(time.Time) {
		if atomic.AddInt32(&runs, 1) == 1 {
			started <- struct{}{}
			<-release
		}
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("start-up run did not fire")
	}
	time.Sleep(2500 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("ticks overlapped the start-up run: runs=%d", got)
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStopWaitsForStartupRun(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	s := NewCronScheduler("0 0 1 1 *", nil, true)

	err := s.Start(context.Background(), func(time.Time) {
		close(started)
		<-release
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-started

	stopped := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stopped <- s.Stop(ctx)
	}()

	select {
	case err := <-stopped:
		t.Fatalf("Stop returned while the start-up run was active: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Stop did not return after the start-up run finished")
	}
}

func TestStopTimesOutOnStuckStartupRun(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	s := NewCronScheduler("0 0 1 1 *", nil, true)

	if err := s.Start(context.Background(), func(time.Time) {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
