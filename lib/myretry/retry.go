package myretry

import (
	"context"
	"time"

	"github.com/MarcGrol/campaignbackend/lib/myerrors"
	"github.com/MarcGrol/campaignbackend/lib/mylog"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// Runner retries an operation with exponentially growing delays.
// Errors that are classified as non-retryable abort immediately.
type Runner struct {
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(c context.Context, d time.Duration) error
	logger      mylog.Logger
}

func New() *Runner {
	return &Runner{
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		sleep:       contextSleep,
		logger:      mylog.New("retry"),
	}
}

// NewWithSleeper allows tests to inject a fake sleeper
func NewWithSleeper(sleep func(c context.Context, d time.Duration) error) *Runner {
	r := New()
	r.sleep = sleep
	return r
}

func (r *Runner) Do(c context.Context, operationName string, f func(c context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			// 1s after the first failure, 2s after the second
			delay := r.baseDelay * (1 << (attempt - 1))
			r.logger.Log(c, operationName, mylog.SeverityInfo, "Retrying %s (attempt %d of %d) after %s", operationName, attempt+1, r.maxAttempts, delay)
			err := r.sleep(c, delay)
			if err != nil {
				return err
			}
		}

		lastErr = f(c)
		if lastErr == nil {
			return nil
		}

		if !myerrors.IsRetryable(lastErr) {
			r.logger.Log(c, operationName, mylog.SeverityWarn, "Error on %s is not retryable, giving up: %s", operationName, lastErr)
			return lastErr
		}
	}

	return myerrors.NewRetriesExhaustedError(lastErr)
}

func contextSleep(c context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.Done():
		return c.Err()
	case <-timer.C:
		return nil
	}
}
