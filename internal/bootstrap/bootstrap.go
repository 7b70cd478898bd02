// Package bootstrap runs a command with resources that must be released on
// the way out.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
)

// App owns the resources of one command invocation, such as the database
// connection behind a repository.
type App struct {
	mu       sync.Mutex
	hooks    []func(ctx context.Context) error
	shutdown sync.Once
	errs     error
}

func New() *App {
	return &App{}
}

// AddShutdownHook registers a function to call when the app stops.
// Hooks run in reverse order (LIFO). Thread-safe.
func (a *App) AddShutdownHook(fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// AddCloser registers c.Close as a shutdown hook.
func (a *App) AddCloser(name string, c io.Closer) {
	a.AddShutdownHook(func(ctx context.Context) error {
		slog.Default().Debug("closing", "resource", name)
		return c.Close()
	})
}

// Run executes run until it returns or the process is interrupted, then runs
// the shutdown hooks. The error of run comes first in the joined result.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.Shutdown(context.Background()))
}

// Shutdown runs the registered hooks once; later calls return the same
// result.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdown.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		var errs []error
		for i := len(a.hooks) - 1; i >= 0; i-- {
			if err := a.hooks[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		a.errs = errors.Join(errs...)
	})
	return a.errs
}
