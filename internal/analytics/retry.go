package analytics

import (
	"math"
	"time"
)

// RetryStrategy handles exponential backoff for warehouse deliveries
type RetryStrategy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryStrategy returns the mirror's standard backoff schedule
func DefaultRetryStrategy() RetryStrategy {
	return RetryStrategy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Delay calculates the backoff before the given attempt.
// Formula: delay = min(initial * multiplier^(attempt-1), max)
func (rs RetryStrategy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(rs.InitialDelay) * math.Pow(rs.Multiplier, float64(attempt-1))
	if delay > float64(rs.MaxDelay) {
		delay = float64(rs.MaxDelay)
	}

	return time.Duration(delay)
}

// ShouldRetry determines whether another attempt is worthwhile after the
// given outcome. Network errors, 5xx responses and 429 rate limits are
// retryable; anything else (4xx) is a permanent rejection.
func (rs RetryStrategy) ShouldRetry(attempt, statusCode int, err error) bool {
	if attempt >= rs.MaxAttempts {
		return false
	}

	if err != nil {
		return true
	}

	if statusCode >= 500 && statusCode < 600 {
		return true
	}

	return statusCode == 429
}
