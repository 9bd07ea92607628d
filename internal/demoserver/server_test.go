package demoserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/kpi"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestCheckLogin_LoggedOutReportsLoginURL(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/api/check-login")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_logged_in", body["status"])
	assert.Equal(t, ts.URL+"/login", body["login_url"])
}

func TestLoginFlow_WithClient(t *testing.T) {
	s, ts := newTestServer(t, Options{Seed: 1})
	client := kpi.NewClient(ts.URL)
	ctx := context.Background()

	status, err := client.CheckLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, kpi.LoggedOut, status.State)
	assert.Equal(t, ts.URL+"/login", status.LoginURL)

	_, err = client.FetchMetrics(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrApplication))
	assert.Equal(t, "Not logged in", errors.MessageOf(err))

	resp, err := http.Get(status.LoginURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, s.LoggedIn())

	status, err = client.CheckLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, kpi.LoggedIn, status.State)

	payload, err := client.FetchMetrics(ctx)
	require.NoError(t, err)
	assert.Len(t, payload.Metrics, len(inventory))
	assert.Len(t, payload.CostData, trendPoints)
	for _, spec := range kpi.BuildCharts(payload) {
		assert.False(t, spec.Truncated, "%s should pair labels and data", spec.Category)
		assert.False(t, spec.Empty(), "%s should have data", spec.Category)
	}

	require.NoError(t, client.Logout(ctx))
	assert.False(t, s.LoggedIn())
}

func TestLoginURLOverride(t *testing.T) {
	_, ts := newTestServer(t, Options{LoginURL: "https://idp.example.test/authorize"})

	status, err := kpi.NewClient(ts.URL).CheckLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.test/authorize", status.LoginURL)
}

func TestRequestsAreCounted(t *testing.T) {
	s, ts := newTestServer(t, Options{LoggedIn: true})
	client := kpi.NewClient(ts.URL)

	for i := 0; i < 3; i++ {
		_, err := client.FetchMetrics(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.Requests("/api/kpi-data"))
	assert.Equal(t, 0, s.Requests("/api/check-login"))
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/kpi-data", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
