package manager

import (
	"context"
	"time"

	"github.com/forgekit/forgekit/logger"
	"github.com/forgekit/forgekit/settings"
	"github.com/forgekit/forgekit/version"
)

// Status is the runtime status snapshot other managers may read during their
// own startup.
type Status struct {
	Mode       settings.Mode
	BaseFolder string
	ServerInfo string
	Version    string
	BootDate   time.Time
}

// RuntimeManager is the first manager in the declared order. It owns the
// resolved base folder and the version/status fields; every later manager
// may assume this data is finalized before its own Start runs.
type RuntimeManager struct {
	cfg    *settings.RuntimeConfig
	status Status
	log    *logger.Logger
}

// NewRuntimeManager creates an unstarted runtime manager.
func NewRuntimeManager() *RuntimeManager {
	return &RuntimeManager{log: logger.WithComponent(CapRuntime)}
}

// Name returns "runtime".
func (m *RuntimeManager) Name() string { return CapRuntime }

// Capabilities registers the manager under the runtime tag.
func (m *RuntimeManager) Capabilities() []string { return []string{CapRuntime} }

// Start binds the finalized runtime configuration and populates the status
// snapshot.
func (m *RuntimeManager) Start(ctx context.Context, cfg *settings.RuntimeConfig) error {
	m.cfg = cfg
	m.status = Status{
		Mode:       cfg.Mode,
		BaseFolder: cfg.BaseFolder,
		ServerInfo: cfg.ServerInfo,
		Version:    version.Short(),
		BootDate:   time.Now().UTC(),
	}

	m.log.Info("runtime manager started", map[string]interface{}{
		logger.FieldMode: string(cfg.Mode),
		logger.FieldPath: cfg.BaseFolder,
		"version":        m.status.Version,
	})
	return nil
}

// Stop releases nothing; the runtime manager holds no external resources.
func (m *RuntimeManager) Stop(ctx context.Context) error {
	return nil
}

// Settings returns the finalized runtime configuration, nil before Start.
func (m *RuntimeManager) Settings() *settings.RuntimeConfig { return m.cfg }

// BaseFolder returns the resolved base folder, "" before Start.
func (m *RuntimeManager) BaseFolder() string { return m.status.BaseFolder }

// Status returns the status snapshot populated at Start.
func (m *RuntimeManager) Status() Status { return m.status }
