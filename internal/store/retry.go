package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Opener creates a fresh datastore handle.
type Opener func(ctx context.Context) (Store, error)

// RetryPolicy bounds the startup connection gate.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ConnectWithRetry opens and pings the datastore up to policy.Attempts times,
// waiting policy.Delay between attempts. A handle whose ping fails is closed
// before the next attempt.
func ConnectWithRetry(ctx context.Context, open Opener, policy RetryPolicy, logger *zerolog.Logger) (Store, error) {
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		st, err := tryOpen(ctx, open)
		if err == nil {
			return st, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == attempts {
			break
		}

		logger.Warn().Err(err).Msgf("waiting for datastore (attempt %d/%d)", attempt, attempts)
		if err := sleep(ctx, policy.Delay); err != nil {
			return nil, err
		}
	}

	logger.Error().Err(lastErr).Int("attempts", attempts).Msg("could not connect to datastore")
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, attempts, lastErr)
}

func tryOpen(ctx context.Context, open Opener) (Store, error) {
	st, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := st.Ping(ctx); err != nil {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return st, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
