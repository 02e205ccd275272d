// Package bootstrap orchestrates application startup and shutdown: it
// resolves the deployment environment, merges the runtime configuration,
// materializes bundled default resources, starts the subsystem managers in
// declared order, and registers request routes with deterministic precedence.
//
// The Context object replaces a process-wide singleton: it is constructed
// once at process start and handed to everything that needs to look up a
// manager by name or capability. Bootstrap runs single-threaded, once per
// process; the merged configuration and manager list are write-once state.
package bootstrap
