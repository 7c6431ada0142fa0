package hirez

import (
	"context"
	"testing"
	"time"
)

func TestPacer_DisabledReturnsImmediately(t *testing.T) {
	p := newPacer(0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("Disabled pacer should not sleep, took %v", elapsed)
	}
}

func TestPacer_SpacesCalls(t *testing.T) {
	delay := 30 * time.Millisecond
	p := newPacer(delay)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	// First call is free, the next two wait one slot each.
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("Expected at least %v between three calls, took %v", 2*delay, elapsed)
	}
}

func TestPacer_FirstCallIsFree(t *testing.T) {
	p := newPacer(time.Second)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("First call should not wait, took %v", elapsed)
	}
}

func TestPacer_ContextCancellation(t *testing.T) {
	p := newPacer(time.Second)
	p.Wait(context.Background()) // claim the free slot

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}
