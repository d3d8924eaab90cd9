package service

import (
	"context"
	"time"
)

// defaultBackgroundTimeout bounds detached writes when no timeout is configured.
const defaultBackgroundTimeout = 10 * time.Second

// runDetached runs fn on its own goroutine with a fresh context, so it outlives the request.
// The returned channel is buffered and receives fn's result exactly once; callers may ignore it.
func runDetached(timeout time.Duration, fn func(ctx context.Context) error) <-chan error {
	if timeout <= 0 {
		timeout = defaultBackgroundTimeout
	}
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		done <- fn(ctx)
	}()
	return done
}
