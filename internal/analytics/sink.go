package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferrgo/kestrel/internal/model"
)

// Sink mirrors sanitized service records to the analytics warehouse. The
// mirror is fire-and-forget from the caller's perspective: failures are the
// sink's problem, never the verification path's.
type Sink interface {
	Mirror(ctx context.Context, record model.MirrorRecord) error
}

// NoopSink discards records. Used when no warehouse is configured.
type NoopSink struct{}

// Mirror discards the record
func (NoopSink) Mirror(ctx context.Context, record model.MirrorRecord) error {
	return nil
}

// WarehouseSink posts records to the columnar warehouse ingest endpoint with
// exponential backoff retries and a circuit breaker.
type WarehouseSink struct {
	url        string
	httpClient *http.Client
	breaker    *CircuitBreaker
	retry      RetryStrategy
}

// NewWarehouseSink creates a warehouse sink with connection pooling
func NewWarehouseSink(url string, timeout time.Duration) *WarehouseSink {
	return &WarehouseSink{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: NewCircuitBreaker(),
		retry:   DefaultRetryStrategy(),
	}
}

// Mirror delivers one record, retrying transient failures
func (s *WarehouseSink) Mirror(ctx context.Context, record model.MirrorRecord) error {
	if !s.breaker.CanAttempt() {
		slog.Warn("Circuit breaker is open, skipping warehouse delivery",
			"checkpoint_id", record.CheckpointID,
			"circuit_state", s.breaker.StateName(),
		)
		return fmt.Errorf("circuit breaker is open")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal mirror record: %w", err)
	}

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		statusCode, err := s.deliver(ctx, payload)

		if err == nil && statusCode >= 200 && statusCode < 300 {
			s.breaker.RecordSuccess()
			slog.Debug("Mirror record delivered",
				"checkpoint_id", record.CheckpointID,
				"attempt", attempt,
				"status_code", statusCode,
			)
			return nil
		}

		if !s.retry.ShouldRetry(attempt, statusCode, err) {
			s.breaker.RecordFailure()
			if err != nil {
				return fmt.Errorf("warehouse delivery failed after %d attempts: %w", attempt, err)
			}
			return fmt.Errorf("warehouse delivery rejected with status %d", statusCode)
		}

		delay := s.retry.Delay(attempt)
		slog.Warn("Warehouse delivery failed, retrying",
			"checkpoint_id", record.CheckpointID,
			"attempt", attempt,
			"next_retry_ms", delay.Milliseconds(),
			"status_code", statusCode,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.breaker.RecordFailure()
	return fmt.Errorf("warehouse delivery failed after %d attempts", s.retry.MaxAttempts)
}

// deliver performs a single POST to the ingest endpoint. A non-nil error
// means the request never produced an HTTP response; HTTP-level rejections
// are reported through the status code alone.
func (s *WarehouseSink) deliver(ctx context.Context, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode, nil
}
