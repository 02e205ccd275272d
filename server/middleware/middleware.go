// Package middleware provides the standard Gin middleware stack for the
// hosting server: panic recovery, request IDs, request logging, and the
// optional enforce-basic-auth filter.
package middleware
