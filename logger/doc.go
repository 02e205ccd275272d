// Package logger provides structured logging on top of rs/zerolog.
// It exposes a small Logger wrapper with component tagging plus a global
// instance initialized once during bootstrap.
package logger
