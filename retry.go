package spotted

import (
	"time"
)

// RetryPolicy is a bounded retry with exponential backoff applied at IO call
// sites (slack api and score store calls). Attempts are capped so a failing
// dependency degrades to a reported failure instead of hanging the pipeline
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt
	InitialBackoff time.Duration

	// Multiplier scales the backoff after each failed attempt
	Multiplier float64
}

// DefaultRetryPolicy returns the standard policy of 3 attempts starting at
// 100ms and doubling between attempts
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: 100 * time.Millisecond, Multiplier: 2.}
}

// Do runs the operation until it succeeds or attempts are exhausted and
// returns the last error, if any
func (p RetryPolicy) Do(operation func() error) (err error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := p.InitialBackoff
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff = time.Duration(float64(backoff) * p.Multiplier)
		}

		if err = operation(); err == nil {
			return nil
		}
	}

	return err
}
