package routes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/util"
)

// PrecedenceClass determines match order; it is the class, not insertion
// order, that decides whether a route beats the catch-all.
type PrecedenceClass int

const (
	// RestrictedExact routes are access-restricted endpoints matched before
	// anything else (typically a filter chain ahead of the handler).
	RestrictedExact PrecedenceClass = iota
	// Specific routes are plain handlers on concrete paths.
	Specific
	// CatchAll is the wildcard fallback, registered last via
	// FinalizeCatchAll.
	CatchAll
)

// String returns the class name.
func (c PrecedenceClass) String() string {
	switch c {
	case RestrictedExact:
		return "restricted-exact"
	case Specific:
		return "specific"
	case CatchAll:
		return "catch-all"
	default:
		return "unknown"
	}
}

// InitParams are the init-parameters passed to a handler factory at
// registration time, mirroring the hosting runtime's registration facility.
type InitParams map[string]string

// HandlerFactory builds a handler from its init-parameters.
type HandlerFactory func(InitParams) gin.HandlerFunc

// IgnorePathsParam is the init-parameter carrying the catch-all's exclusion
// list: the flattened, comma-separated set of every previously registered
// path pattern.
const IgnorePathsParam = "ignore.paths"

// ErrFinalized is returned when registering after the catch-all was mounted.
var ErrFinalized = errors.New("routes: catch-all already finalized")

// Registrar owns the full ordered route list for a gin engine.
type Registrar struct {
	engine     *gin.Engine
	registered []string
	seen       map[string]bool
	finalized  bool
	authFilter gin.HandlerFunc
	log        *logger.Logger
}

// NewRegistrar creates a Registrar over the given engine.
func NewRegistrar(engine *gin.Engine) *Registrar {
	return &Registrar{
		engine: engine,
		seen:   make(map[string]bool),
		log:    logger.WithComponent("routes"),
	}
}

// Register mounts a restricted or specific route without init-parameters.
// Optional filter factories run ahead of the handler in the given order.
// Registering the same pattern twice is tolerated: the first registration
// wins and the exclusion set is unchanged. Catch-all registration must go
// through FinalizeCatchAll.
func (r *Registrar) Register(pattern string, class PrecedenceClass, handler HandlerFactory, filters ...HandlerFactory) error {
	return r.RegisterWithParams(pattern, class, nil, handler, filters...)
}

// RegisterWithParams is Register with init-parameters handed to the handler
// and filter factories at registration time.
func (r *Registrar) RegisterWithParams(pattern string, class PrecedenceClass, params InitParams, handler HandlerFactory, filters ...HandlerFactory) error {
	if r.finalized {
		return ErrFinalized
	}
	if class == CatchAll {
		return errors.New("routes: register the catch-all via FinalizeCatchAll")
	}
	if pattern == "" || pattern[0] != '/' {
		return fmt.Errorf("routes: invalid path pattern %q", pattern)
	}

	if r.seen[pattern] {
		r.log.Warn("duplicate route registration ignored", map[string]interface{}{
			logger.FieldPath: pattern,
		})
		return nil
	}

	chain := make([]gin.HandlerFunc, 0, len(filters)+1)
	for _, f := range filters {
		chain = append(chain, f(params))
	}
	chain = append(chain, handler(params))

	r.engine.Any(ginPattern(pattern), chain...)
	r.registered = append(r.registered, pattern)
	r.seen[pattern] = true

	r.log.Debug("route registered", map[string]interface{}{
		logger.FieldPath: pattern,
		"class":          class.String(),
		"filters":        len(filters),
	})
	return nil
}

// UseAuthFilter stores an enforce-authentication filter to be inserted ahead
// of the catch-all on the wildcard path. It does not disturb the relative
// order of restricted routes versus the catch-all: routes already mounted
// keep their own chains.
func (r *Registrar) UseAuthFilter(filter gin.HandlerFunc) {
	r.authFilter = filter
}

// FinalizeCatchAll mounts the wildcard fallback. Its init-parameters carry
// the exclusion list: the deduplicated set of every path pattern registered
// so far, flattened comma-separated under IgnorePathsParam.
func (r *Registrar) FinalizeCatchAll(handler HandlerFactory, params InitParams) error {
	if r.finalized {
		return ErrFinalized
	}

	merged := make(InitParams, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged[IgnorePathsParam] = util.FlattenStrings(r.RegisteredPaths(), ",")

	h := handler(merged)
	if r.authFilter != nil {
		r.engine.NoRoute(r.authFilter, h)
	} else {
		r.engine.NoRoute(h)
	}
	r.finalized = true

	r.log.Info("catch-all finalized", map[string]interface{}{
		"excluded": merged[IgnorePathsParam],
	})
	return nil
}

// RegisteredPaths returns the deduplicated path patterns in registration
// order, excluding the catch-all.
func (r *Registrar) RegisteredPaths() []string {
	return util.Dedup(r.registered)
}

// Finalized reports whether the catch-all has been mounted.
func (r *Registrar) Finalized() bool { return r.finalized }

// ginPattern converts a servlet-style pattern to a gin route pattern:
// "/r/*" becomes "/r/*path", a trailing "/" becomes a subtree wildcard,
// exact paths pass through unchanged.
func ginPattern(pattern string) string {
	if strings.HasSuffix(pattern, "/*") {
		return pattern[:len(pattern)-1] + "*path"
	}
	if strings.HasSuffix(pattern, "/") && pattern != "/" {
		return pattern + "*path"
	}
	return pattern
}
