package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxRetries      = 3
	initialInterval = 2 * time.Second
	maxInterval     = 30 * time.Second
)

// StatusError is a non-200 answer from an HTTP provider
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API status %d: %s", e.Code, e.Body)
}

// Retryable reports whether repeating the request may succeed
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// DefaultBackOff is the retry policy used when a Fetcher has none
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = maxInterval
	return backoff.WithMaxRetries(b, maxRetries)
}

// classify marks errors that retrying cannot fix as permanent
func classify(err error) error {
	if err == nil {
		return nil
	}
	var status *StatusError
	if errors.As(err, &status) && !status.Retryable() {
		return backoff.Permanent(err)
	}
	if errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled) {
		return backoff.Permanent(err)
	}
	return err
}
