// Package config loads the runner configuration for widgetd and the stub
// backend from YAML, with environment overrides layered on top.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Config is the full runner configuration.
type Config struct {
	Widget  WidgetConfig  `yaml:"widget"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Stub    StubConfig    `yaml:"stub"`
	Geo     GeoConfig     `yaml:"geo"`
}

// WidgetConfig describes the host a headless widget run should assume. It
// stands in for the configuration a real embedding page would hand over
// during the handshake.
type WidgetConfig struct {
	BackendURL string `yaml:"backendUrl"`
	SocketURL  string `yaml:"socketUrl"`
	TenantCode string `yaml:"tenantCode"`
	PageURL    string `yaml:"pageUrl"`
	HeaderText string `yaml:"headerText"`
	Theme      string `yaml:"theme"`
	AutoOpen   bool   `yaml:"autoOpen"`
	TabsMode   *bool  `yaml:"tabsMode"`

	HandshakeTimeoutSeconds int `yaml:"handshakeTimeoutSeconds"`
}

// StoreConfig selects where session state persists.
type StoreConfig struct {
	// Path of the SQLite database, or ":memory:" for a throwaway store.
	Path string `yaml:"path"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// StubConfig configures the development backend.
type StubConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// GeoConfig configures the country lookup.
type GeoConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Widget: WidgetConfig{
			BackendURL:              "http://127.0.0.1:8980",
			SocketURL:               "http://127.0.0.1:8980",
			TenantCode:              "dev-tenant",
			PageURL:                 "http://localhost/dev",
			HeaderText:              "Support",
			Theme:                   "light",
			HandshakeTimeoutSeconds: 5,
		},
		Store: StoreConfig{
			Path: ":memory:",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Stub: StubConfig{
			Addr:    ":8980",
			Metrics: true,
		},
	}
}
