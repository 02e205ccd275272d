// Package util provides small string and path helpers shared across the
// bootstrap core.
package util
