package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type retryingGetter struct {
	next         Getter
	retries      int
	initialDelay time.Duration
}

// WithRetry wraps next so failed fetches are retried up to retries times with
// exponential backoff. Client errors (4xx other than 429) are not retried.
// retries <= 0 returns next unchanged.
func WithRetry(next Getter, retries int, initialDelay time.Duration) Getter {
	if retries <= 0 {
		return next
	}
	if initialDelay <= 0 {
		initialDelay = 500 * time.Millisecond
	}
	return &retryingGetter{next: next, retries: retries, initialDelay: initialDelay}
}

func (r *retryingGetter) Fetch(ctx context.Context, rawURL string, params Params, out any) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialDelay

	op := func() error {
		err := r.next.Fetch(ctx, rawURL, params, out)
		if err == nil {
			return nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !retryableStatus(statusErr.StatusCode) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.retries)), ctx))
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
