// Package importer submits normalised spreadsheet rows to the inventory API
// one at a time, retrying failed rows and tracking progress.
package importer

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the attempts made for one row within one pass. The wait
// before attempt n+1 is BackoffBase × 2^(n-1).
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
}

// DefaultRetryPolicy makes three attempts, waiting 400ms then 800ms.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BackoffBase: 400 * time.Millisecond}

func (p RetryPolicy) backoff() retry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var b retry.Backoff
	if p.BackoffBase > 0 {
		b = retry.NewExponential(p.BackoffBase)
	} else {
		b = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// Submitter sends one record to the inventory API.
type Submitter[T any] func(ctx context.Context, record T) error

// SubmitWithRetry calls submit until it succeeds or the policy's attempts are
// used up. It returns the number of attempts made and the last error.
func SubmitWithRetry[T any](ctx context.Context, p RetryPolicy, record T, submit Submitter[T]) (int, error) {
	attempts := 0
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		if err := submit(ctx, record); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return attempts, err
}
