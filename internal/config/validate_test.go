package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Server.BaseURL = "" },
			wantErr: "server.base_url is required",
		},
		{
			name:    "base url without scheme",
			mutate:  func(c *Config) { c.Server.BaseURL = "localhost:5000" },
			wantErr: "server.base_url",
		},
		{
			name:    "negative request timeout",
			mutate:  func(c *Config) { c.Server.RequestTimeout = -time.Second },
			wantErr: "request_timeout",
		},
		{
			name:   "zero request timeout disables the bound",
			mutate: func(c *Config) { c.Server.RequestTimeout = 0 },
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Auth.PollInterval = 0 },
			wantErr: "poll_interval",
		},
		{
			name:    "bad login url",
			mutate:  func(c *Config) { c.Auth.LoginURL = "ftp://login" },
			wantErr: "auth.login_url",
		},
		{
			name:    "refresh interval too short",
			mutate:  func(c *Config) { c.Refresh.Interval = 100 * time.Millisecond },
			wantErr: "too short",
		},
		{
			name:    "page size zero",
			mutate:  func(c *Config) { c.UI.PageSize = 0 },
			wantErr: "page_size",
		},
		{
			name:    "unknown color mode",
			mutate:  func(c *Config) { c.UI.Color = "rainbow" },
			wantErr: "ui.color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			}
		})
	}
}
