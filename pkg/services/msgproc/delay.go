/*
2024 © Postgres.ai
*/

package msgproc

import (
	"context"
	"time"
)

// Delayer pauses the pipeline between successive language model calls.
type Delayer interface {
	Delay(ctx context.Context) error
}

// FixedDelay waits for a fixed duration unless the context is done first.
type FixedDelay time.Duration

// NoDelay does not wait at all.
const NoDelay = FixedDelay(0)

// Delay waits for the duration.
func (d FixedDelay) Delay(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return nil
	}
}
