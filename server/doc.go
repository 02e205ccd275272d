// Package server provides the hosting HTTP server: a Gin engine wrapped in
// an h2c-capable net/http server. The server participates in the manager
// lifecycle under the services capability and reads its listen configuration
// from the finalized runtime settings.
package server
