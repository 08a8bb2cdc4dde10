package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || got != "ok" || calls != 1 {
		t.Errorf("got=%q err=%v calls=%d", got, err, calls)
	}
}

func TestRetry_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) { retried = append(retried, attempt) }

	got, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("got=%d err=%v", got, err)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("OnRetry attempts = %v", retried)
	}
}

func TestRetry_ExceedsMaxAttempts(t *testing.T) {
	calls := 0
	want := errors.New("always")
	err := RetryFunc(context.Background(), fastConfig(4), func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 4 {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	root := errors.New("404")
	err := RetryFunc(context.Background(), fastConfig(5), func() error {
		calls++
		return Permanent(root)
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if err != root {
		t.Errorf("expected unwrapped root error, got %v", err)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RetryFunc(ctx, cfg, func() error {
		calls++
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestRetry_RetryIfFilter(t *testing.T) {
	calls := 0
	cfg := fastConfig(5)
	cfg.RetryIf = func(err error) bool { return err.Error() == "retry" }
	_ = RetryFunc(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return errors.New("retry")
		}
		return errors.New("stop")
	})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt, cfg); got != tt.want {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.want)
		}
	}

	fixed := FixedRetryConfig(3, time.Second)
	for attempt := 1; attempt <= 3; attempt++ {
		if got := calculateBackoff(attempt, fixed); got != time.Second {
			t.Errorf("fixed attempt %d: got %v", attempt, got)
		}
	}
}
