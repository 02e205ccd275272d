// Package errors provides structured error types for the bootstrap core.
// It classifies failures into the bootstrap taxonomy: configuration warnings
// and resource errors are diagnostics that never abort startup, while a
// startup failure is fatal and leaves the process in a non-serving state.
package errors
