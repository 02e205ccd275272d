// Command forgekit is the standalone launcher: it supplies an explicit
// settings file and base folder, hosts the HTTP server, and wires the
// standard route table.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/forgekit/forgekit/bootstrap"
	"github.com/forgekit/forgekit/deploy"
	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/manager"
	"github.com/forgekit/forgekit/routes"
	"github.com/forgekit/forgekit/server"
	"github.com/forgekit/forgekit/server/middleware"
	"github.com/forgekit/forgekit/settings"
	"github.com/forgekit/forgekit/version"
)

// KeyBasicAuthAccounts lists "user:bcrypt-hash" entries consulted by the
// enforce-basic-auth filter.
const KeyBasicAuthAccounts = "web.basicAuthAccounts"

func main() {
	var (
		baseFolder   = flag.String("base-folder", "data", "instance data directory")
		settingsFile = flag.String("settings", "", "properties file (default <base-folder>/"+deploy.LocalSettingsName+")")
		logLevel     = flag.String("log-level", "info", "log level (trace|debug|info|warn|error)")
		logFormat    = flag.String("log-format", "console", "log format (console|json)")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Short())
		return
	}

	logCfg := logger.Config{Level: *logLevel, Format: *logFormat}
	if err := run(*baseFolder, *settingsFile, logCfg); err != nil {
		logger.Error("exiting", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		os.Exit(1)
	}
}

func run(baseFolder, settingsFile string, logCfg logger.Config) error {
	logger.Init(&logCfg)

	path := settingsFile
	if path == "" {
		path = filepath.Join(baseFolder, deploy.LocalSettingsName)
	}

	engine := server.NewEngine()
	srv := server.New(engine)

	var app *bootstrap.Context

	app, err := bootstrap.New(bootstrap.Options{
		Name:    "forgekit",
		Logging: logCfg,
		Context: deploy.ContextInfo{
			Standalone: &deploy.StandaloneConfig{
				Settings:   settings.NewFileSource(path),
				BaseFolder: baseFolder,
			},
			ServerInfo: "forgekit/" + version.Short(),
		},
		Managers:   []manager.Manager{srv},
		Resources:  nil, // the standalone distribution ships its defaults on disk
		Engine:     engine,
		Routes:     registerRoutes,
		CatchAll:   statusPage(func() *settings.RuntimeConfig { return app.Config() }),
		AuthVerify: settingsVerifier(func() *settings.RuntimeConfig { return app.Config() }),
	})
	if err != nil {
		return err
	}

	if err := app.Startup(context.Background()); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("signal received", map[string]interface{}{"signal": s.String()})

	return app.Shutdown(context.Background())
}

// registerRoutes mounts the standard route table: the access-restricted
// service endpoints first, then the plain endpoints, in precedence order.
func registerRoutes(r *routes.Registrar) error {
	restricted := []string{"/r/*", "/git/*", "/pages/*", "/rpc/*", "/zip/*", "/feed/*"}
	for _, pattern := range restricted {
		if err := r.Register(pattern, routes.RestrictedExact, serviceStub(pattern)); err != nil {
			return err
		}
	}

	for _, pattern := range []string{"/federation/*", "/graph/*"} {
		if err := r.Register(pattern, routes.Specific, serviceStub(pattern)); err != nil {
			return err
		}
	}

	if err := r.Register("/robots.txt", routes.Specific, robotsTxt); err != nil {
		return err
	}
	return r.Register("/logo.png", routes.Specific, serviceStub("/logo.png"))
}

// serviceStub answers for a service endpoint whose backing subsystem is not
// part of this distribution.
func serviceStub(pattern string) routes.HandlerFactory {
	return func(routes.InitParams) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.JSON(http.StatusNotImplemented, gin.H{
				"service": pattern,
				"path":    c.Request.URL.Path,
			})
		}
	}
}

func robotsTxt(routes.InitParams) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
	}
}

// statusPage is the catch-all: it reports the instance status for any path
// no other route claimed.
func statusPage(config func() *settings.RuntimeConfig) routes.HandlerFactory {
	return func(params routes.InitParams) gin.HandlerFunc {
		excluded := params[routes.IgnorePathsParam]
		return func(c *gin.Context) {
			cfg := config()
			if cfg == nil {
				c.Status(http.StatusServiceUnavailable)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"name":     "forgekit",
				"version":  version.Short(),
				"mode":     string(cfg.Mode),
				"services": strings.Split(excluded, ","),
			})
		}
	}
}

// settingsVerifier checks basic-auth credentials against the account list in
// the merged settings. The configuration is read lazily: the filter only ever
// runs after startup finalized it.
func settingsVerifier(config func() *settings.RuntimeConfig) func(user, pass string) bool {
	return func(user, pass string) bool {
		cfg := config()
		if cfg == nil {
			return false
		}
		accounts := make(map[string]string)
		for _, entry := range cfg.GetStrings(KeyBasicAuthAccounts) {
			if name, hash, ok := strings.Cut(entry, ":"); ok {
				accounts[name] = hash
			}
		}
		return middleware.BcryptVerifier(accounts)(user, pass)
	}
}
