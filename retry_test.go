package spotted_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/spottedbot/spotted"
	"github.com/stretchr/testify/assert"
)

func TestRetrySucceedsOnFirstAttempt(t *testing.T) {
	p := spotted.RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, Multiplier: 2.}

	calls := 0
	err := p.Do(func() error {
		calls++
		return nil
	})

	assert.Nil(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterTransientFailure(t *testing.T) {
	p := spotted.RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, Multiplier: 2.}

	calls := 0
	err := p.Do(func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("transient failure %d", calls)
		}

		return nil
	})

	assert.Nil(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastErrorWhenExhausted(t *testing.T) {
	p := spotted.RetryPolicy{MaxAttempts: 2, InitialBackoff: time.Millisecond, Multiplier: 2.}

	calls := 0
	err := p.Do(func() error {
		calls++
		return fmt.Errorf("failure %d", calls)
	})

	if assert.Error(t, err) {
		assert.Equal(t, "failure 2", err.Error())
	}
	assert.Equal(t, 2, calls)
}

func TestRetryWithZeroAttemptsStillRunsOnce(t *testing.T) {
	p := spotted.RetryPolicy{MaxAttempts: 0, InitialBackoff: time.Millisecond, Multiplier: 2.}

	calls := 0
	err := p.Do(func() error {
		calls++
		return fmt.Errorf("failure")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
