// Package extract materializes bundled default resources into the base
// folder. Extraction is idempotent: a destination file that already exists is
// never overwritten, so re-running on every startup is safe and preserves
// user edits. Per-entry failures are logged and skipped.
package extract
