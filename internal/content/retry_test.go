package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBackoffSucceedsAfterFailures(t *testing.T) {
	b := Backoff{MaxAttempts: 4, Min: time.Millisecond, Max: 4 * time.Millisecond}
	attempts := 0
	err := b.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestBackoffExhaustionWrapsLastError(t *testing.T) {
	b := Backoff{MaxAttempts: 2, Min: time.Millisecond, Max: time.Millisecond}
	sentinel := errors.New("still down")
	err := b.Do(context.Background(), func() error { return sentinel })
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("error does not wrap last failure: %v", err)
	}
	if !strings.Contains(err.Error(), "2 attempts") {
		t.Fatalf("error = %v", err)
	}
}

func TestBackoffStopsOnCancel(t *testing.T) {
	b := Backoff{MaxAttempts: 10, Min: time.Hour, Max: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Do(ctx, func() error { return errors.New("fail") })
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}
