package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/forgekit/forgekit/deploy"
	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/manager"
	"github.com/forgekit/forgekit/routes"
)

// Options configures a bootstrap Context.
type Options struct {
	// Name identifies the application in logs and status.
	Name string `validate:"required"`

	// Logging configures the global logger, initialized during New.
	Logging logger.Config

	// Context carries the environment signals for deployment resolution.
	Context deploy.ContextInfo

	// Managers are the subsystem managers to run, in any order; they are
	// sorted into the declared start order by capability before
	// registration. The runtime manager is registered implicitly and is
	// always first.
	Managers []manager.Manager

	// Resources is the bundled default resource tree, extracted into the
	// base folder on first run. May be nil.
	Resources fs.FS

	// Engine is the Gin engine routes are registered on. Required when
	// Routes or CatchAll is set.
	Engine *gin.Engine

	// Routes registers the restricted and specific routes. May be nil.
	Routes func(*routes.Registrar) error

	// CatchAll is the wildcard fallback handler factory, finalized after
	// every other route. May be nil.
	CatchAll routes.HandlerFactory

	// CatchAllParams are extra init-parameters for the catch-all.
	CatchAllParams routes.InitParams

	// AuthVerify checks basic-auth credentials for the optional
	// enforce-basic-auth filter. The filter is only inserted when the
	// enforcement setting is enabled and AuthVerify is non-nil.
	AuthVerify func(username, password string) bool

	// AuthRealm is the basic-auth realm, defaulting to Name.
	AuthRealm string

	// GracefulStopTimeout bounds Shutdown. Defaults to 15s.
	GracefulStopTimeout time.Duration `validate:"min=0"`
}

// ApplyDefaults fills unset option fields.
func (o *Options) ApplyDefaults() {
	o.Logging.ApplyDefaults()
	if o.GracefulStopTimeout == 0 {
		o.GracefulStopTimeout = 15 * time.Second
	}
	if o.AuthRealm == "" {
		o.AuthRealm = o.Name
	}
}

// Validate checks the options for structural problems.
func (o *Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return err
	}
	if err := o.Logging.Validate(); err != nil {
		return err
	}
	if (o.Routes != nil || o.CatchAll != nil) && o.Engine == nil {
		return errors.New("bootstrap: route registration requires an engine")
	}
	return nil
}
