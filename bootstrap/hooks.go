package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback that runs during startup or shutdown.
type Hook func(ctx context.Context) error

// OnStart registers a hook that runs after all managers are started and all
// routes are registered.
func (c *Context) OnStart(hooks ...Hook) {
	c.onStart = append(c.onStart, hooks...)
}

// OnStop registers a hook that runs during shutdown before managers are
// stopped. Use this for cleanup tasks like draining connections.
func (c *Context) OnStop(hooks ...Hook) {
	c.onStop = append(c.onStop, hooks...)
}

// runHooks executes a slice of hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
