package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	}, FixedConfig(3, time.Millisecond))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, FixedConfig(5, time.Millisecond))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("always fails")

	err := Do(context.Background(), func() error {
		calls++
		return wantErr
	}, FixedConfig(3, time.Millisecond))

	if !errors.Is(err, wantErr) {
		t.Errorf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return Permanent(errors.New("bad row shape"))
	}, Config{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		RetryIf:      RetryIfTemporary,
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("permanent error must not be retried, got %d calls", calls)
	}
}

func TestDoRetriesTemporaryError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return Temporary(errors.New("connection reset"))
	}, Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		RetryIf:      RetryIfTemporary,
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("temporary error should be retried 3 times, got %d", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, FixedConfig(3, time.Millisecond))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestDoRespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func() error {
		calls++
		return errors.New("never succeeds")
	}, FixedConfig(10, time.Second))

	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if calls != 0 {
		t.Errorf("cancelled context must prevent the first attempt, got %d calls", calls)
	}
}

func TestFixedConfigDelayIsConstant(t *testing.T) {
	cfg := FixedConfig(5, 2*time.Second)
	cfg.validate()

	for attempt := 0; attempt < 4; attempt++ {
		if d := cfg.calculateDelay(attempt); d != 2*time.Second {
			t.Errorf("attempt %d: expected 2s delay, got %v", attempt, d)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error defaults to retryable", errors.New("x"), true},
		{"permanent", Permanent(errors.New("x")), false},
		{"temporary", Temporary(errors.New("x")), true},
		{"wrapped permanent", errors.Join(errors.New("ctx"), Permanent(errors.New("x"))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
