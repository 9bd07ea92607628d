package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .kpi.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ServerConfig describes the KPI API the dashboard talks to.
type ServerConfig struct {
	// BaseURL is the scheme://host[:port] prefix for /api/check-login and /api/kpi-data.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// RequestTimeout bounds each request. Zero disables the bound, in which
	// case a hung request keeps the busy indicator on.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// AuthConfig controls the login gate.
type AuthConfig struct {
	// Gated requires a successful login check before any metrics fetch.
	Gated bool `yaml:"gated" mapstructure:"gated"`

	// LoginURL is used when the server reports not_logged_in without a login_url.
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`

	// PollInterval is how often login status is re-checked after the login action.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// LoginTimeout caps how long 'kpi login' waits for the handshake.
	LoginTimeout time.Duration `yaml:"login_timeout" mapstructure:"login_timeout"`
}

// RefreshConfig controls the periodic reload.
type RefreshConfig struct {
	// Interval between timer-driven refresh cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Cache enables the provisional paint from the session cache.
	Cache bool `yaml:"cache" mapstructure:"cache"`
}

// UIConfig controls terminal presentation.
type UIConfig struct {
	// ToastDuration is how long notifications stay on screen.
	ToastDuration time.Duration `yaml:"toast_duration" mapstructure:"toast_duration"`

	// PageSize is the number of table rows per page.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// LogConfig controls where logs go while the dashboard owns the terminal.
type LogConfig struct {
	// File is the dashboard log path. Empty means $TMPDIR/kpi.log.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server: ServerConfig{
			BaseURL:        "http://localhost:5000",
			RequestTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Gated:        false,
			PollInterval: 5 * time.Second,
			LoginTimeout: 5 * time.Minute,
		},
		Refresh: RefreshConfig{
			Interval: 5 * time.Minute,
			Cache:    true,
		},
		UI: UIConfig{
			ToastDuration: 5 * time.Second,
			PageSize:      10,
			Color:         "auto",
		},
	}
}
