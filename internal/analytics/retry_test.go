package analytics

import (
	"errors"
	"testing"
	"time"
)

func TestRetryStrategyDelay(t *testing.T) {
	rs := DefaultRetryStrategy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, 30 * time.Second}, // capped at MaxDelay
	}

	for _, tt := range tests {
		if got := rs.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryStrategyShouldRetry(t *testing.T) {
	rs := DefaultRetryStrategy()

	tests := []struct {
		name       string
		attempt    int
		statusCode int
		err        error
		want       bool
	}{
		{"network error retries", 1, 0, errors.New("connection refused"), true},
		{"server error retries", 1, 503, nil, true},
		{"rate limit retries", 1, 429, nil, true},
		{"client error is permanent", 1, 400, nil, false},
		{"success does not retry", 1, 200, nil, false},
		{"attempts exhausted", 3, 503, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.ShouldRetry(tt.attempt, tt.statusCode, tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%d, %d, %v) = %v, want %v", tt.attempt, tt.statusCode, tt.err, got, tt.want)
			}
		})
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker()

	for i := 0; i < 5; i++ {
		if !cb.CanAttempt() {
			t.Fatalf("circuit opened early at failure %d", i)
		}
		cb.RecordFailure()
	}

	if cb.CanAttempt() {
		t.Error("circuit must be open after 5 consecutive failures")
	}
	if cb.StateName() != "open" {
		t.Errorf("StateName() = %q, want open", cb.StateName())
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker()

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}
	cb.RecordSuccess()
	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}

	if !cb.CanAttempt() {
		t.Error("a success in closed state must reset the failure count")
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker()
	cb.timeout = 0 // transition to half-open immediately

	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}

	if !cb.CanAttempt() {
		t.Fatal("expired cool-off must allow a probe attempt")
	}
	if cb.StateName() != "half-open" {
		t.Fatalf("StateName() = %q, want half-open", cb.StateName())
	}

	cb.RecordSuccess()
	cb.RecordSuccess()

	if cb.StateName() != "closed" {
		t.Errorf("StateName() = %q, want closed after 2 probe successes", cb.StateName())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker()
	cb.timeout = 0

	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	if !cb.CanAttempt() { // moves to half-open
		t.Fatal("expected probe attempt")
	}

	cb.RecordFailure()
	cb.timeout = time.Minute

	if cb.CanAttempt() {
		t.Error("a failed probe must reopen the circuit")
	}
}
