package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestStartRunsJobImmediately(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Hour)
	ctx := context.Background()
	ran := make(chan time.Time, 1)

	if err := s.Start(ctx, func(now time.Time) { ran <- now }); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = s.Stop(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run at startup")
	}
}

func TestStopIsIdempotentAndAllowsRestart(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Hour)
	ctx := context.Background()
	ran := make(chan time.Time, 2)
	job := func(now time.Time) { ran <- now }

	if err := s.Start(ctx, job); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-ran

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	if err := s.Start(ctx, job); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer func() { _ = s.Stop(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run after restart")
	}
}

func TestStopRacesWithRunningGoroutine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		s := NewIntervalScheduler(time.Millisecond)
		if err := s.Start(ctx, func(time.Time) {}); err != nil {
			t.Fatalf("start: %v", err)
		}
		if err := s.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}
}
