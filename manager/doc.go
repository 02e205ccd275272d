// Package manager holds the ordered registry of lifecycle-managed
// subsystems. Managers start in declared order against the finalized runtime
// configuration and stop in reverse of the order they actually started.
// A start failure is fatal and aborts the remaining sequence; stop failures
// are isolated so every started manager gets a stop attempt.
package manager
