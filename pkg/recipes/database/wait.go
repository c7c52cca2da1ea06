package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// WaitForDB pings the database until it answers, giving up after attempts
// tries spaced interval apart.
func WaitForDB(ctx context.Context, db Pinger, attempts uint64, interval time.Duration) error {
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1, retry.NewConstant(interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database unavailable after %d attempts: %w", attempts, err)
	}
	return nil
}
