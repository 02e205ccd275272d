package settings

// Mode tags which deployment environment produced the runtime configuration.
type Mode string

const (
	// ModeStandalone means an explicitly supplied configuration object and
	// base folder (the bundled launcher).
	ModeStandalone Mode = "standalone"

	// ModeServlet means the default hosted deployment: the base folder is
	// resolved from a context-scoped setting.
	ModeServlet Mode = "servlet"

	// ModePlatform means a platform-managed deployment: the base folder is
	// dictated by the platform's data-directory environment variable.
	ModePlatform Mode = "platform-managed"
)

// RuntimeConfig is the single authoritative runtime configuration: the merged
// settings plus the resolved base folder and deployment mode. It is created
// once per process during bootstrap and read-only thereafter.
type RuntimeConfig struct {
	*Store

	// BaseFolder is the absolute root directory for persisted settings and
	// instance data.
	BaseFolder string

	// Mode is the detected deployment mode.
	Mode Mode

	// ServerInfo describes the hosting runtime, for status reporting.
	ServerInfo string
}

// NewRuntimeConfig freezes the store and binds it to the resolved base folder
// and deployment mode.
func NewRuntimeConfig(store *Store, baseFolder string, mode Mode, serverInfo string) *RuntimeConfig {
	store.Freeze()
	return &RuntimeConfig{
		Store:      store,
		BaseFolder: baseFolder,
		Mode:       mode,
		ServerInfo: serverInfo,
	}
}
