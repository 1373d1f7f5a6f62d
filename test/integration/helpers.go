//go:build integration

package integration

import (
	"context"
	"fmt"
	"time"
)

// WaitForBroker retries check until it returns nil or timeout is reached.
// A broker's TCP port is often open before its AMQP listener accepts links.
func WaitForBroker(ctx context.Context, check func(context.Context) error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = check(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("broker not ready after %s: %w", timeout, lastErr)
		case <-ticker.C:
		}
	}
}
