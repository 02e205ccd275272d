package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/settings"
)

const stopTimeout = 10 * time.Second

// entry holds a manager and its lifecycle state.
type entry struct {
	manager Manager
	state   State
}

// Registry manages subsystem lifecycle with deterministic ordering.
// Managers start in registration order and stop in reverse of the order
// they actually started. The registry is populated during single-threaded
// bootstrap and read-only afterwards, so no locking is required.
type Registry struct {
	entries []*entry
	lookup  map[string]*entry
	caps    map[string]*entry
	started []*entry
	log     *logger.Logger
}

// NewRegistry creates an empty manager registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup: make(map[string]*entry),
		caps:   make(map[string]*entry),
		log:    logger.WithComponent("manager"),
	}
}

// Register adds a manager. Registration order is start order, so register
// dependencies first. A manager implementing Capable is additionally indexed
// under each of its capability tags.
func (r *Registry) Register(m Manager) error {
	name := m.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("manager %s already registered", name)
	}

	e := &entry{manager: m, state: Unstarted}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	if c, ok := m.(Capable); ok {
		for _, tag := range c.Capabilities() {
			if _, exists := r.caps[tag]; exists {
				return fmt.Errorf("capability %s already claimed", tag)
			}
			r.caps[tag] = e
		}
	}

	r.log.Debug("manager registered", map[string]interface{}{
		logger.FieldManager: name,
	})
	return nil
}

// StartAll starts every manager in registration order against the finalized
// runtime configuration. The first start failure propagates immediately:
// a partially started system is not masked, and the remaining managers are
// never started.
func (r *Registry) StartAll(ctx context.Context, cfg *settings.RuntimeConfig) error {
	r.log.Info("starting all managers", map[string]interface{}{
		"count": len(r.entries),
	})

	for _, e := range r.entries {
		name := e.manager.Name()
		e.state = Starting

		r.log.Info("starting manager", map[string]interface{}{
			logger.FieldManager: name,
		})
		if err := e.manager.Start(ctx, cfg); err != nil {
			e.state = Failed
			r.log.Error("manager start failed", map[string]interface{}{
				logger.FieldManager: name,
				logger.FieldError:   err.Error(),
			})
			return fmt.Errorf("failed to start %s: %w", name, err)
		}

		e.state = Running
		r.started = append(r.started, e)
	}

	r.log.Info("all managers started")
	return nil
}

// StopAll stops the started managers in reverse of the order they actually
// started: a manager that never started is never asked to stop, and
// dependents stop before their dependencies. Each stop call is isolated —
// a failure is logged and collected but never prevents the remaining stops.
func (r *Registry) StopAll(ctx context.Context) error {
	r.log.Info("stopping all managers")

	var errs []error
	for i := len(r.started) - 1; i >= 0; i-- {
		e := r.started[i]
		if e.state != Running {
			continue
		}

		name := e.manager.Name()
		e.state = Stopping
		r.log.Debug("stopping manager", map[string]interface{}{
			logger.FieldManager: name,
		})

		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		if err := e.manager.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("manager stop failed", map[string]interface{}{
				logger.FieldManager: name,
				logger.FieldError:   err.Error(),
			})
		} else {
			r.log.Info("manager stopped", map[string]interface{}{
				logger.FieldManager: name,
			})
		}
		e.state = Stopped
		cancel()
	}
	r.started = nil

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	r.log.Info("all managers stopped")
	return nil
}

// Get returns a registered manager by name, or nil if not found.
func (r *Registry) Get(name string) Manager {
	if e, exists := r.lookup[name]; exists {
		return e.manager
	}
	return nil
}

// ByCapability returns the manager registered under the capability tag,
// or nil if no manager claimed it.
func (r *Registry) ByCapability(tag string) Manager {
	if e, exists := r.caps[tag]; exists {
		return e.manager
	}
	return nil
}

// State returns the lifecycle state of the named manager. Unknown names
// report Unstarted.
func (r *Registry) State(name string) State {
	if e, exists := r.lookup[name]; exists {
		return e.state
	}
	return Unstarted
}

// All returns every registered manager in registration order.
func (r *Registry) All() []Manager {
	out := make([]Manager, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.manager)
	}
	return out
}
