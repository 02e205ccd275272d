// Package routes registers request routes with explicit precedence.
// Restricted and specific routes register first; the catch-all fallback is
// finalized last and receives an exclusion list built from every path
// registered before it, so it can skip paths it does not own.
package routes
