package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryWithBackoff_SucceedsAfterRetry(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(), func() error {
		attempts++
		if attempts < 2 {
			return &APIError{StatusCode: 429, Class: ErrorClassRateLimit}
		}
		return nil
	}, func(err error) ErrorClass {
		return ErrorClassRateLimit
	})

	if err != nil {
		t.Fatalf("retryWithBackoff failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetryWithBackoff_NonRetriableReturnsImmediately(t *testing.T) {
	attempts := 0
	wantErr := &APIError{StatusCode: 400, Class: ErrorClassClient}

	err := retryWithBackoff(context.Background(), fastRetryConfig(), func() error {
		attempts++
		return wantErr
	}, func(err error) ErrorClass {
		return ErrorClassClient
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_Exhaustion(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(), func() error {
		attempts++
		return &APIError{StatusCode: 429, Class: ErrorClassRateLimit}
	}, func(err error) ErrorClass {
		return ErrorClassRateLimit
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("expected ErrRetryExhausted, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	config := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    time.Hour, // never elapses; cancellation must win
		MaxBackoff:        time.Hour,
		BackoffMultiplier: 2.0,
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := retryWithBackoff(ctx, config, func() error {
		return &APIError{StatusCode: 429, Class: ErrorClassRateLimit}
	}, func(err error) ErrorClass {
		return ErrorClassRateLimit
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("expected ErrContextCancelled, got %v", err)
	}
}
