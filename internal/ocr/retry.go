package ocr

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// retryPolicy bounds retries of a remote OCR call. The zero value makes a
// single attempt.
type retryPolicy struct {
	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 3, backoff: 500 * time.Millisecond, maxBackoff: 10 * time.Second}
}

// transientError marks a failed response that is safe to retry.
type transientError struct {
	err    error
	status int
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isTransient(err error) bool {
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// withRetry runs fn until it succeeds, fails permanently, or the policy's
// attempts are used up. Backoff doubles with ±25% jitter.
func withRetry[T any](ctx context.Context, p retryPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := max(p.attempts, 1)
	delay := p.backoff

	var zero T
	for attempt := 1; ; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		if attempt >= attempts || ctx.Err() != nil || !isTransient(err) {
			return zero, err
		}

		zap.L().Warn("ocr: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		wait := delay + time.Duration((rand.Float64()*0.5-0.25)*float64(delay))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}

		delay *= 2
		if p.maxBackoff > 0 && delay > p.maxBackoff {
			delay = p.maxBackoff
		}
	}
}
