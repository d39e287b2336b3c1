// File path: internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted wraps the final failure once every attempt has been spent.
var ErrExhausted = errors.New("retry attempts exhausted")

// Config bounds an attempt loop. Backoff grows linearly with the attempt
// number, matching the reconnect behavior used against the vector index.
type Config struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultConfig is used whenever a zero Config is passed.
var DefaultConfig = Config{Attempts: 3, Backoff: 250 * time.Millisecond}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable: Do returns the underlying error
// immediately instead of spending attempts on a failure that cannot change.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op until it succeeds, the context is canceled, or attempts run out.
// The returned error wraps both ErrExhausted and the last failure so callers
// can match either with errors.Is.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultConfig.Attempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultConfig.Backoff
	}
	var last error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * cfg.Backoff):
			}
		}
		if err := op(ctx); err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				return perm.err
			}
			last = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, cfg.Attempts, last)
}
