package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// Load reads the config file, applies environment overrides, and returns a
// merged Config. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	// Tenant codes may be stored as ${ENV_VAR} references.
	cfg.Widget.TenantCode = expandEnvVars(cfg.Widget.TenantCode)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Widget.BackendURL == "" {
		cfg.Widget.BackendURL = d.Widget.BackendURL
	}
	if cfg.Widget.SocketURL == "" {
		cfg.Widget.SocketURL = cfg.Widget.BackendURL
	}
	if cfg.Widget.TenantCode == "" {
		cfg.Widget.TenantCode = d.Widget.TenantCode
	}
	if cfg.Widget.PageURL == "" {
		cfg.Widget.PageURL = d.Widget.PageURL
	}
	if cfg.Widget.HeaderText == "" {
		cfg.Widget.HeaderText = d.Widget.HeaderText
	}
	if cfg.Widget.Theme == "" {
		cfg.Widget.Theme = d.Widget.Theme
	}
	if cfg.Widget.HandshakeTimeoutSeconds == 0 {
		cfg.Widget.HandshakeTimeoutSeconds = d.Widget.HandshakeTimeoutSeconds
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = d.Store.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Stub.Addr == "" {
		cfg.Stub.Addr = d.Stub.Addr
	}
}

// applyEnvOverrides reads WIDGETCORE_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WIDGETCORE_BACKEND_URL"); v != "" {
		cfg.Widget.BackendURL = v
	}
	if v := os.Getenv("WIDGETCORE_SOCKET_URL"); v != "" {
		cfg.Widget.SocketURL = v
	}
	if v := os.Getenv("WIDGETCORE_TENANT_CODE"); v != "" {
		cfg.Widget.TenantCode = v
	}
	if v := os.Getenv("WIDGETCORE_PAGE_URL"); v != "" {
		cfg.Widget.PageURL = v
	}
	if v := os.Getenv("WIDGETCORE_AUTO_OPEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Widget.AutoOpen = b
		}
	}
	if v := os.Getenv("WIDGETCORE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("WIDGETCORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("WIDGETCORE_STUB_ADDR"); v != "" {
		cfg.Stub.Addr = v
	}
}
