// Package connect retries the initial connection to a dependency.
package connect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/rs/zerolog"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("connection attempts exhausted")

// Options controls WithRetry.
type Options struct {
	Name     string
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
	Log      zerolog.Logger
}

// WithRetry calls fn until it succeeds, opts.Attempts is reached or ctx is
// done. The delay between attempts is fixed.
func WithRetry(ctx context.Context, opts Options, fn func(ctx context.Context) error) error {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}

	var lastErr error
	err := retry.Call(retry.CallArgs{
		Func:     func() error { return fn(ctx) },
		Attempts: opts.Attempts,
		Delay:    opts.Delay,
		Clock:    opts.Clock,
		Stop:     ctx.Done(),
		NotifyFunc: func(err error, attempt int) {
			lastErr = err
			opts.Log.Warn().Err(err).
				Str("dependency", opts.Name).
				Int("attempt", attempt).
				Int("max_attempts", opts.Attempts).
				Msg("connection attempt failed")
		},
	})
	if err == nil {
		opts.Log.Info().Str("dependency", opts.Name).Msg("connected")
		return nil
	}
	if retry.IsAttemptsExceeded(err) {
		return fmt.Errorf("%s: %w: %w", opts.Name, ErrExhausted, lastErr)
	}
	if lastErr != nil {
		return fmt.Errorf("%s: %w: %w", opts.Name, err, lastErr)
	}
	return fmt.Errorf("%s: %w", opts.Name, err)
}
