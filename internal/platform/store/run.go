package store

import (
	"context"
	"time"

	perr "punchclock/internal/platform/errors"
)

// RetryPolicy bounds RunTx retries
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// Retry reports whether err is worth another attempt
// unique violations count because a concurrent writer may have taken the same key
func Retry(err error) bool {
	return perr.IsRetryable(err) || perr.IsDuplicateKey(err)
}

// RunTx runs fn in a transaction, retrying transient failures with linear backoff
func RunTx(ctx context.Context, tx TxRunner, p RetryPolicy, fn func(ctx context.Context, q RowQuerier) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = tx.Tx(ctx, func(q RowQuerier) error { return fn(ctx, q) })
		if err == nil || !Retry(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff * time.Duration(i+1)):
		}
	}
	return err
}
