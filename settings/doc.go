// Package settings provides layered key-value configuration for the
// application bootstrap. Sources are merged in priority order into a single
// viper-backed store; the merged store is frozen into a read-only
// RuntimeConfig before any subsystem manager starts.
package settings
