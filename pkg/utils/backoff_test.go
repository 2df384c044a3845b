package utils

import (
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	delay := 100 * time.Millisecond
	backoff := NewConstantBackoff(delay)

	for i := 0; i < 10; i++ {
		nextDelay := backoff.NextDelay(i)
		if nextDelay != delay {
			t.Errorf("Attempt %d: expected %v, got %v", i, delay, nextDelay)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	baseDelay := 100 * time.Millisecond
	maxDelay := 1 * time.Second
	backoff := NewExponentialBackoff(baseDelay, maxDelay, 2.0, false)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second},
		{10, 1 * time.Second},
	}

	for _, tt := range tests {
		got := backoff.NextDelay(tt.attempt)
		if got != tt.expected {
			t.Errorf("Attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestExponentialBackoffJitter(t *testing.T) {
	baseDelay := 100 * time.Millisecond
	backoff := NewExponentialBackoff(baseDelay, time.Second, 2.0, true)

	for i := 0; i < 20; i++ {
		delay := backoff.NextDelay(0)
		if delay < 50*time.Millisecond || delay > 150*time.Millisecond {
			t.Errorf("Jittered delay outside [0.5, 1.5]*base: %v", delay)
		}
	}
}

func TestExponentialBackoffDefaultMultiplier(t *testing.T) {
	backoff := NewExponentialBackoff(100*time.Millisecond, time.Second, 0, false)
	if backoff.Multiplier != 2.0 {
		t.Errorf("Expected default multiplier 2.0, got %f", backoff.Multiplier)
	}
}

func TestBackoffFromConfig(t *testing.T) {
	constant := BackoffFromConfig("constant", 50, 0)
	if _, ok := constant.(*ConstantBackoff); !ok {
		t.Errorf("Expected ConstantBackoff, got %T", constant)
	}

	exponential := BackoffFromConfig("exponential", 50, 500)
	if _, ok := exponential.(*ExponentialBackoff); !ok {
		t.Errorf("Expected ExponentialBackoff, got %T", exponential)
	}

	// Unknown types fall back to exponential with jitter
	fallback := BackoffFromConfig("bogus", 50, 500)
	if _, ok := fallback.(*ExponentialBackoff); !ok {
		t.Errorf("Expected ExponentialBackoff fallback, got %T", fallback)
	}
}
