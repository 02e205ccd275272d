package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/settings"
	"github.com/forgekit/forgekit/util"
)

const (
	// EnvDataDir is the platform data-directory environment variable. Its
	// presence switches the deployment mode to platform-managed outright.
	EnvDataDir = "FORGEKIT_DATA_DIR"

	// KeyBaseFolder is the descriptor setting naming the base folder path.
	KeyBaseFolder = "baseFolder"

	// ContextFolderToken is the placeholder representing the hosting
	// context's real filesystem path.
	ContextFolderToken = "${contextFolder}"

	// BaseFolderToken is the placeholder representing the resolved base
	// folder, usable in settings that name paths beneath it.
	BaseFolderToken = "${baseFolder}"

	// LocalSettingsName is the persisted settings file under the base folder.
	LocalSettingsName = "forgekit.properties"

	// DirectoryEntryBaseFolder is the directory-service env-entry consulted
	// for a base-folder override in servlet mode.
	DirectoryEntryBaseFolder = "baseFolder"

	defaultBasePath = ContextFolderToken + "/data"
)

// DirectoryService is an optional naming-service lookup for environment
// entries. The boolean reports presence explicitly; the error is reserved for
// genuine lookup failures (never used as a "not configured" signal).
type DirectoryService interface {
	Lookup(name string) (value string, ok bool, err error)
}

// StandaloneConfig is the explicitly supplied configuration of a standalone
// launcher: its settings object and its base folder.
type StandaloneConfig struct {
	Settings   settings.Source
	BaseFolder string
}

// ContextInfo carries the environment signals inspected during resolution.
type ContextInfo struct {
	// Standalone, when non-nil, supplies an explicit configuration object
	// and base folder.
	Standalone *StandaloneConfig

	// Descriptor exposes the hosting runtime's context-scoped settings
	// (the web-descriptor equivalent). May be nil.
	Descriptor settings.Source

	// ContextPath is the hosting context's real filesystem path, "" when
	// the hosting runtime cannot supply one.
	ContextPath string

	// ServerInfo describes the hosting runtime for status reporting.
	ServerInfo string

	// Directory is an optional naming-service lookup. May be nil.
	Directory DirectoryService

	// Defaults is the lowest-priority source of process defaults. May be nil.
	Defaults settings.Source

	// Getenv overrides os.Getenv, for tests. May be nil.
	Getenv func(string) string
}

// Resolution is the outcome of environment resolution: a non-empty absolute
// base folder, the settings sources in increasing merge priority, and the
// detected deployment mode.
type Resolution struct {
	BaseFolder string
	Sources    []settings.Source
	Mode       settings.Mode

	// LocalSettings is the path of the persisted settings file, "" in
	// standalone mode where the explicit settings object is authoritative.
	LocalSettings string

	// Warnings are configuration diagnostics; none of them is fatal.
	Warnings []string
}

// Resolve inspects the environment signals in fixed priority order and
// produces the base folder, settings sources, and deployment mode.
//
// Signal priority: the platform data-directory variable wins over an explicit
// standalone configuration, which wins over the servlet default.
func Resolve(info ContextInfo) (Resolution, error) {
	getenv := info.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	log := logger.WithComponent("deploy")

	var (
		res Resolution
		err error
	)

	switch {
	case getenv(EnvDataDir) != "":
		res, err = resolvePlatform(getenv(EnvDataDir), info, log)
	case info.Standalone != nil:
		res, err = resolveStandalone(info, log)
	default:
		res, err = resolveServlet(info, log)
	}
	if err != nil {
		return Resolution{}, err
	}

	loadDotEnv(&res, log)

	for _, w := range res.Warnings {
		log.Warn(w)
	}
	log.Info("environment resolved", map[string]interface{}{
		logger.FieldMode: string(res.Mode),
		logger.FieldPath: res.BaseFolder,
	})
	return res, nil
}

// resolvePlatform handles the platform-managed mode: the base folder is the
// platform's data directory, settings persist beneath it.
func resolvePlatform(dataDir string, info ContextInfo, log *logger.Logger) (Resolution, error) {
	log.Debug("configuring platform-managed deployment")

	base, err := ensureBaseFolder(dataDir)
	if err != nil {
		return Resolution{}, err
	}

	local := filepath.Join(base, LocalSettingsName)
	sources := make([]settings.Source, 0, 3)
	if info.Defaults != nil {
		sources = append(sources, info.Defaults)
	}
	if info.Descriptor != nil {
		sources = append(sources, info.Descriptor)
	}
	fileSrc := settings.NewFileSource(local)

	res := Resolution{
		BaseFolder:    base,
		Sources:       append(sources, fileSrc),
		Mode:          settings.ModePlatform,
		LocalSettings: local,
	}
	if fileSrc.Err() != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("local settings unavailable: %v", fileSrc.Err()))
	}
	return res, nil
}

// resolveStandalone handles the standalone mode: the launcher supplied both
// the settings object and the base folder.
func resolveStandalone(info ContextInfo, log *logger.Logger) (Resolution, error) {
	log.Debug("configuring standalone deployment")

	if util.IsEmpty(info.Standalone.BaseFolder) {
		return Resolution{}, fmt.Errorf("deploy: standalone configuration has no base folder")
	}
	base, err := ensureBaseFolder(info.Standalone.BaseFolder)
	if err != nil {
		return Resolution{}, err
	}

	sources := make([]settings.Source, 0, 2)
	if info.Defaults != nil {
		sources = append(sources, info.Defaults)
	}
	if info.Standalone.Settings != nil {
		sources = append(sources, info.Standalone.Settings)
	}

	return Resolution{
		BaseFolder: base,
		Sources:    sources,
		Mode:       settings.ModeStandalone,
	}, nil
}

// resolveServlet handles the default hosted mode: the base path comes from a
// context-scoped setting, with placeholder substitution against the hosting
// context's real path and an optional directory-service override.
func resolveServlet(info ContextInfo, log *logger.Logger) (Resolution, error) {
	log.Debug("configuring servlet deployment")

	var warnings []string

	path := defaultBasePath
	if info.Descriptor != nil {
		if v, ok := info.Descriptor.Get(KeyBaseFolder); ok && !util.IsEmpty(v) {
			path = v
		}
	}

	if strings.Contains(path, ContextFolderToken) && info.ContextPath == "" {
		// The hosting runtime returned no real path (issue seen on some
		// containers); the path stays parameterized and fails later with a
		// clear diagnostic.
		warnings = append(warnings, fmt.Sprintf(
			"%q depends on %q but the hosting context returned no real path; "+
				"specify a non-parameterized %s setting", path, ContextFolderToken, KeyBaseFolder))
	}

	if info.Directory != nil {
		v, ok, err := info.Directory.Lookup(DirectoryEntryBaseFolder)
		switch {
		case err != nil:
			log.Error("directory-service lookup failed", logger.ErrorFields("deploy", err))
		case ok && !util.IsEmpty(v):
			path = v
		}
	}

	if info.ContextPath != "" {
		path = util.ResolveToken(ContextFolderToken, info.ContextPath, path)
	}
	base, err := ensureBaseFolder(path)
	if err != nil {
		return Resolution{}, err
	}

	local := filepath.Join(base, LocalSettingsName)
	sources := make([]settings.Source, 0, 3)
	if info.Defaults != nil {
		sources = append(sources, info.Defaults)
	}
	if info.Descriptor != nil {
		sources = append(sources, info.Descriptor)
	}
	fileSrc := settings.NewFileSource(local)

	res := Resolution{
		BaseFolder:    base,
		Sources:       append(sources, fileSrc),
		Mode:          settings.ModeServlet,
		LocalSettings: local,
		Warnings:      warnings,
	}
	if fileSrc.Err() != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("local settings unavailable: %v", fileSrc.Err()))
	}
	return res, nil
}

// ensureBaseFolder makes the path absolute and attempts to create it.
// Creation failure is non-fatal; downstream I/O reports the real problem.
func ensureBaseFolder(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("deploy: resolve base folder %s: %w", path, err)
	}
	_ = os.MkdirAll(abs, 0o755)
	return abs, nil
}

// loadDotEnv loads <base>/.env overrides into the process environment when
// the file exists. Failures degrade to warnings.
func loadDotEnv(res *Resolution, log *logger.Logger) {
	envFile := filepath.Join(res.BaseFolder, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("failed to load %s: %v", envFile, err))
		return
	}
	log.Debug("environment overrides loaded", map[string]interface{}{
		logger.FieldPath: envFile,
	})
}
