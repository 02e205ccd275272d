package server

import (
	"fmt"

	"github.com/forgekit/forgekit/settings"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// Settings keys consulted by FromSettings.
const (
	KeyHost         = "server.host"
	KeyHTTPPort     = "server.httpPort"
	KeyReadTimeout  = "server.readTimeout"
	KeyWriteTimeout = "server.writeTimeout"
	KeyIdleTimeout  = "server.idleTimeout"
)

// FromSettings builds a Config from the runtime settings, applying defaults
// for undefined keys.
func FromSettings(cfg *settings.RuntimeConfig) Config {
	c := Config{
		Host:         cfg.GetString(KeyHost, ""),
		Port:         cfg.GetInt(KeyHTTPPort, 8080),
		ReadTimeout:  cfg.GetInt(KeyReadTimeout, 15),
		WriteTimeout: cfg.GetInt(KeyWriteTimeout, 15),
		IdleTimeout:  cfg.GetInt(KeyIdleTimeout, 60),
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port must be in 1..65535 (got: %d)", c.Port)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
