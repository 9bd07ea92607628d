package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/kpiwatch/internal/config"
	"github.com/rileyhilliard/kpiwatch/internal/demoserver"
	"github.com/rileyhilliard/kpiwatch/internal/errors"
)

func newDemo(t *testing.T, loggedIn bool) (*demoserver.Server, *config.Config) {
	t.Helper()
	srv := demoserver.New(demoserver.Options{LoggedIn: loggedIn, Seed: 42})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = ts.URL
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Auth.PollInterval = 10 * time.Millisecond
	cfg.Auth.LoginTimeout = 5 * time.Second
	return srv, cfg
}

func TestRunFetch_Human(t *testing.T) {
	_, cfg := newDemo(t, true)

	var out bytes.Buffer
	require.NoError(t, runFetch(context.Background(), cfg, &out, false))

	text := out.String()
	assert.Contains(t, text, "Fetched KPI data from "+cfg.Server.BaseURL)
	assert.Contains(t, text, "Cost Trend")
	assert.Contains(t, text, "Entities by Status:")
	assert.Contains(t, text, "vm-web-01")
	assert.Contains(t, text, "vm-legacy")
}

func TestRunFetch_JSON(t *testing.T) {
	_, cfg := newDemo(t, true)

	var out bytes.Buffer
	require.NoError(t, runFetch(context.Background(), cfg, &out, true))

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Metrics []map[string]interface{} `json:"metrics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data.Metrics, 12)
}

func TestRunFetch_LoggedOutReportsServerError(t *testing.T) {
	_, cfg := newDemo(t, false)

	var out bytes.Buffer
	err := runFetch(context.Background(), cfg, &out, true)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrApplication))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, ErrCodeServer, env.Error.Code)
	assert.Equal(t, "Not logged in", env.Error.Message)
}

func TestRunCheckLogin(t *testing.T) {
	srv, cfg := newDemo(t, false)

	var out bytes.Buffer
	require.NoError(t, runCheckLogin(context.Background(), cfg, &out, false))
	assert.Contains(t, out.String(), "Not logged in")
	assert.Contains(t, out.String(), cfg.Server.BaseURL+"/login")

	srv.SetLoggedIn(true)
	out.Reset()
	require.NoError(t, runCheckLogin(context.Background(), cfg, &out, true))

	var env struct {
		Data LoginStatusOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.Equal(t, "logged_in", env.Data.State)
	assert.Empty(t, env.Data.LoginURL)
}

func TestRunLogin_OpensAndWaits(t *testing.T) {
	srv, cfg := newDemo(t, false)

	var opened string
	var out bytes.Buffer
	err := runLogin(context.Background(), cfg, LoginOptions{
		Out: &out,
		Open: func(url string) error {
			opened = url
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			return resp.Body.Close()
		},
	})

	require.NoError(t, err)
	assert.Equal(t, cfg.Server.BaseURL+"/login", opened)
	assert.True(t, srv.LoggedIn())
	assert.Contains(t, out.String(), "Logged in")
}

func TestRunLogin_AlreadyLoggedIn(t *testing.T) {
	_, cfg := newDemo(t, true)

	var out bytes.Buffer
	err := runLogin(context.Background(), cfg, LoginOptions{
		Out:  &out,
		Open: func(string) error { t.Fatal("browser must not open"); return nil },
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Already logged in")
}

func TestRunLogin_Declined(t *testing.T) {
	srv, cfg := newDemo(t, false)

	var out bytes.Buffer
	err := runLogin(context.Background(), cfg, LoginOptions{
		Out:     &out,
		Open:    func(string) error { t.Fatal("browser must not open"); return nil },
		Confirm: func(string) (bool, error) { return false, nil },
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Cancelled.")
	assert.False(t, srv.LoggedIn())
}

func TestRunLogin_TimesOut(t *testing.T) {
	_, cfg := newDemo(t, false)
	cfg.Auth.LoginTimeout = 80 * time.Millisecond

	var out bytes.Buffer
	err := runLogin(context.Background(), cfg, LoginOptions{
		Out:  &out,
		Open: func(string) error { return assert.AnError },
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Contains(t, out.String(), "in your browser to sign in")
}

func TestRunLogin_NoLoginURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"not_logged_in"}`))
	}))
	defer ts.Close()

	cfg := config.DefaultConfig()
	cfg.Server.BaseURL = ts.URL

	err := runLogin(context.Background(), cfg, LoginOptions{Out: &bytes.Buffer{}})
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
}

func TestRunLogout(t *testing.T) {
	srv, cfg := newDemo(t, true)

	var out bytes.Buffer
	require.NoError(t, runLogout(context.Background(), cfg, &out))
	assert.False(t, srv.LoggedIn())
	assert.Contains(t, out.String(), "Logged out of")
}
