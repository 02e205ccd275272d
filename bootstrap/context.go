package bootstrap

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgekit/forgekit/deploy"
	booterrors "github.com/forgekit/forgekit/errors"
	"github.com/forgekit/forgekit/extract"
	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/manager"
	"github.com/forgekit/forgekit/routes"
	"github.com/forgekit/forgekit/server/middleware"
	"github.com/forgekit/forgekit/settings"
	"github.com/forgekit/forgekit/util"
	"github.com/forgekit/forgekit/version"
)

const (
	// KeyEnforceBasicAuth, when true in the merged settings, inserts the
	// basic-auth filter ahead of the catch-all route.
	KeyEnforceBasicAuth = "web.enforceHTTPBasicAuthentication"

	// KeyScriptsFolder names the hook-scripts directory, relative to the
	// base folder unless absolute. Supports the base-folder placeholder.
	KeyScriptsFolder = "scripts.folder"

	defaultScriptsFolder = "scripts"
	tracerName           = "github.com/forgekit/forgekit/bootstrap"
)

// Context is the bootstrap context: the single composition point that owns
// the resolved environment, the merged runtime configuration, and the manager
// registry. Construct it once with New, run Startup, and pass it (or the
// individual managers) to whatever needs them.
type Context struct {
	opts      Options
	log       *logger.Logger
	tracer    trace.Tracer
	managers  *manager.Registry
	runtime   *manager.RuntimeManager
	registrar *routes.Registrar

	resolution deploy.Resolution
	config     *settings.RuntimeConfig

	onStart []Hook
	onStop  []Hook
	started bool
}

// New validates the options, initializes the global logger, and registers the
// managers in declared order. No subsystem is started yet; call Startup.
func New(opts Options) (*Context, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger.Init(&opts.Logging)

	c := &Context{
		opts:     opts,
		log:      logger.WithComponent("bootstrap"),
		tracer:   otel.Tracer(tracerName),
		managers: manager.NewRegistry(),
		runtime:  manager.NewRuntimeManager(),
	}

	if err := c.managers.Register(c.runtime); err != nil {
		return nil, err
	}
	ordered := make([]manager.Manager, len(opts.Managers))
	copy(ordered, opts.Managers)
	manager.SortByDeclaredOrder(ordered)
	for _, m := range ordered {
		if err := c.managers.Register(m); err != nil {
			return nil, err
		}
	}

	if opts.Engine != nil {
		c.registrar = routes.NewRegistrar(opts.Engine)
	}
	return c, nil
}

// Startup runs the boot sequence: resolve the environment, merge the settings
// sources, materialize bundled defaults, start the managers in declared
// order, and register the routes. The first manager start failure aborts the
// sequence; configuration warnings and resource-extraction failures do not.
func (c *Context) Startup(ctx context.Context) error {
	if c.started {
		return booterrors.New(booterrors.ErrCodeStartupFailure, "bootstrap already completed")
	}
	begin := time.Now()

	ctx, span := c.tracer.Start(ctx, "bootstrap.startup")
	defer span.End()

	c.log.Info("starting", map[string]interface{}{
		"name":    c.opts.Name,
		"version": version.Short(),
	})

	var res deploy.Resolution
	err := c.phase(ctx, "resolve", func(ctx context.Context) error {
		var err error
		res, err = deploy.Resolve(c.opts.Context)
		return err
	})
	if err != nil {
		return c.fail(span, booterrors.New(booterrors.ErrCodeStartupFailure,
			"environment resolution failed").WithCause(err))
	}
	c.resolution = res
	span.SetAttributes(
		attribute.String("deploy.mode", string(res.Mode)),
		attribute.String("deploy.base_folder", res.BaseFolder),
	)

	store := settings.NewStore()
	err = c.phase(ctx, "merge", func(ctx context.Context) error {
		return store.Merge(res.Sources...)
	})
	if err != nil {
		return c.fail(span, booterrors.New(booterrors.ErrCodeStartupFailure,
			"settings merge failed").WithCause(err))
	}

	// Resource problems never abort startup; they are logged and the
	// affected entries are simply absent.
	_ = c.phase(ctx, "extract", func(ctx context.Context) error {
		c.extractResources(ctx, res, store)
		return nil
	})

	c.persistDefaults(res, store)
	c.config = settings.NewRuntimeConfig(store, res.BaseFolder, res.Mode, c.opts.Context.ServerInfo)

	err = c.phase(ctx, "managers", func(ctx context.Context) error {
		return c.managers.StartAll(ctx, c.config)
	})
	if err != nil {
		return c.fail(span, booterrors.New(booterrors.ErrCodeStartupFailure,
			"manager startup failed").WithCause(err))
	}

	err = c.phase(ctx, "routes", func(ctx context.Context) error {
		return c.registerRoutes()
	})
	if err != nil {
		return c.fail(span, booterrors.New(booterrors.ErrCodeStartupFailure,
			"route registration failed").WithCause(err))
	}

	if err := runHooks(ctx, c.onStart); err != nil {
		return c.fail(span, booterrors.New(booterrors.ErrCodeStartupFailure,
			"startup hook failed").WithCause(err))
	}

	c.started = true
	c.log.Info("startup complete", map[string]interface{}{
		logger.FieldMode:     string(res.Mode),
		logger.FieldPath:     res.BaseFolder,
		logger.FieldDuration: time.Since(begin).Milliseconds(),
	})
	return nil
}

// Shutdown stops the application: the stop hooks run first, then the managers
// stop in reverse of the order they started. Hook failures are logged but
// never prevent the manager stops.
func (c *Context) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.GracefulStopTimeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "bootstrap.shutdown")
	defer span.End()

	c.log.Info("shutting down", map[string]interface{}{"name": c.opts.Name})

	if err := runHooks(ctx, c.onStop); err != nil {
		c.log.Error("stop hook failed", logger.ErrorFields("bootstrap", err))
	}

	if err := c.managers.StopAll(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return booterrors.New(booterrors.ErrCodeShutdownFailure,
			"managers failed to stop cleanly").WithCause(err)
	}

	c.started = false
	c.log.Info("shutdown complete")
	return nil
}

// Config returns the finalized runtime configuration, nil before Startup.
func (c *Context) Config() *settings.RuntimeConfig { return c.config }

// Resolution returns the environment resolution outcome.
func (c *Context) Resolution() deploy.Resolution { return c.resolution }

// Manager returns a registered manager by name, or nil.
func (c *Context) Manager(name string) manager.Manager { return c.managers.Get(name) }

// ManagerByCapability returns the manager claiming the capability tag, or nil.
func (c *Context) ManagerByCapability(tag string) manager.Manager {
	return c.managers.ByCapability(tag)
}

// Runtime returns the implicit runtime manager.
func (c *Context) Runtime() *manager.RuntimeManager { return c.runtime }

// Registrar returns the route registrar, nil when no engine was configured.
func (c *Context) Registrar() *routes.Registrar { return c.registrar }

// Started reports whether Startup has completed.
func (c *Context) Started() bool { return c.started }

// registerRoutes runs the route callback, arms the optional enforce-auth
// filter, and finalizes the catch-all with the exclusion list.
func (c *Context) registerRoutes() error {
	if c.registrar == nil {
		return nil
	}
	if c.opts.Routes != nil {
		if err := c.opts.Routes(c.registrar); err != nil {
			return err
		}
	}
	if c.config.GetBool(KeyEnforceBasicAuth, false) && c.opts.AuthVerify != nil {
		c.registrar.UseAuthFilter(middleware.BasicAuth(middleware.BasicAuthConfig{
			Realm:  c.opts.AuthRealm,
			Verify: c.opts.AuthVerify,
		}))
		c.log.Info("basic authentication enforced on unmatched paths")
	}
	if c.opts.CatchAll != nil {
		return c.registrar.FinalizeCatchAll(c.opts.CatchAll, c.opts.CatchAllParams)
	}
	return nil
}

// extractResources materializes bundled defaults. On first run (no persisted
// settings file yet) the full resource tree lands under the base folder. A
// platform-managed instance additionally receives the bundled hook scripts
// when its scripts folder is missing.
func (c *Context) extractResources(ctx context.Context, res deploy.Resolution, store *settings.Store) {
	if c.opts.Resources == nil {
		return
	}

	if res.LocalSettings != "" && !fileExists(res.LocalSettings) {
		if _, err := extract.New().Extract(ctx, c.opts.Resources, res.BaseFolder); err != nil {
			c.log.Error("default resource extraction failed",
				logger.ErrorFields("bootstrap", booterrors.New(
					booterrors.ErrCodeResourceError, "extract defaults").WithCause(err)))
		}
		return
	}

	if res.Mode != settings.ModePlatform {
		return
	}
	folder := store.GetString(KeyScriptsFolder, defaultScriptsFolder)
	folder = util.ResolveToken(deploy.BaseFolderToken, res.BaseFolder, folder)
	if !filepath.IsAbs(folder) {
		folder = filepath.Join(res.BaseFolder, folder)
	}
	if dirExists(folder) {
		return
	}
	scripts, err := fs.Sub(c.opts.Resources, defaultScriptsFolder)
	if err != nil {
		return
	}
	if _, err := extract.New().Extract(ctx, scripts, folder); err != nil {
		c.log.Error("hook script extraction failed",
			logger.ErrorFields("bootstrap", booterrors.New(
				booterrors.ErrCodeResourceError, "extract scripts").WithCause(err)))
	}
}

// persistDefaults writes the merged settings back to the persisted file when
// none exists yet, so the first boot leaves an editable file behind. Failure
// degrades to a warning.
func (c *Context) persistDefaults(res deploy.Resolution, store *settings.Store) {
	if res.LocalSettings == "" || fileExists(res.LocalSettings) || store.Target() == "" {
		return
	}
	if err := store.Save(); err != nil {
		c.log.Warn("could not persist default settings", map[string]interface{}{
			logger.FieldPath:  res.LocalSettings,
			logger.FieldError: err.Error(),
		})
	}
}

// phase runs one bootstrap phase inside its own trace span.
func (c *Context) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "bootstrap."+name)
	defer span.End()

	begin := time.Now()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}

	c.log.Debug("phase finished", map[string]interface{}{
		logger.FieldPhase:    name,
		logger.FieldDuration: time.Since(begin).Milliseconds(),
	})
	return err
}

// fail records the error on the startup span and returns it.
func (c *Context) fail(span trace.Span, err *booterrors.BootError) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	c.log.Error("startup aborted", logger.ErrorFields("bootstrap", err))
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
