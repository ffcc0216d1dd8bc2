package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned error after eventual success: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("persistent")
	attempts := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Retry error = %v, want the last attempt's error", err)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3", attempts)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Retry(ctx, fastRetryConfig(), func() error {
		attempts++
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("Attempts = %d, want 1 with a canceled context", attempts)
	}
}

func TestRetryWithResult(t *testing.T) {
	attempts := 0
	got, err := RetryWithResult(context.Background(), fastRetryConfig(), func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("RetryWithResult returned error: %v", err)
	}
	if got != 42 {
		t.Errorf("Result = %d, want 42", got)
	}
}
