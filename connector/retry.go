package connector

import (
	"context"
	"time"
)

const defaultRetryDelay = time.Second

// retryConnect calls connectFn until it succeeds, making at most
// opts.MaxRetries+1 attempts, sleeping with exponential backoff between
// them.
func retryConnect(ctx context.Context, opts *RetryConfig, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	delay := opts.BaseDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	factor := opts.Backoff
	if factor < 1 {
		factor = 2
	}

	var err error
	for attempt := 0; ; attempt++ {
		var conn Connection
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if attempt >= opts.MaxRetries {
			return nil, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * factor)
		if opts.MaxDelay > 0 && delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}
}
