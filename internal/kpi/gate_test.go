package kpi

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

type recordingOpener struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (o *recordingOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return o.err
}

func (o *recordingOpener) URLs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

func newTestGate(client LoginChecker, view *fakeView, opener Opener, fallback string) (*LoginGate, *countingReloader) {
	p := NewPresenter(view, logger.Noop(), nil, time.Second)
	g := NewLoginGate(client, view, p, opener, GateOptions{
		FallbackLoginURL: fallback,
		PollInterval:     10 * time.Millisecond,
	}, logger.Noop(), nil)
	r := &countingReloader{}
	g.SetReloader(r)
	return g, r
}

var (
	loggedOutAt = func(url string) loginResult {
		return loginResult{status: LoginStatus{State: LoggedOut, LoginURL: url}}
	}
	loggedIn = loginResult{status: LoginStatus{State: LoggedIn}}
)

func TestLoginGate_CheckLoggedOutShowsOverlay(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"))
	view := newFakeView()
	g, r := newTestGate(client, view, nil, "https://fallback.example.com")

	status, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoggedOut, status.State)
	assert.Equal(t, "https://login.example.com", status.LoginURL)

	shown, url := view.Overlay()
	assert.True(t, shown)
	assert.Equal(t, "https://login.example.com", url)

	state, resolved := g.State()
	assert.Equal(t, LoggedOut, state)
	assert.True(t, resolved)
	assert.Equal(t, 0, r.Count())
}

func TestLoginGate_CheckUsesFallbackURL(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt(""))
	view := newFakeView()
	g, _ := newTestGate(client, view, nil, "https://fallback.example.com")

	status, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://fallback.example.com", status.LoginURL)
	assert.Equal(t, "https://fallback.example.com", g.LoginURL())
}

func TestLoginGate_CheckNetworkErrorFailsSafe(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loginResult{err: errors.New(errors.ErrNetwork, "down", "")})
	view := newFakeView()
	g, _ := newTestGate(client, view, nil, "")

	status, err := g.Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, LoggedOut, status.State)

	shown, _ := view.Overlay()
	assert.True(t, shown)
	assert.True(t, view.hasNotification("Failed to check login status"))
}

func TestLoginGate_InitialLoggedInDoesNotReload(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedIn)
	view := newFakeView()
	g, r := newTestGate(client, view, nil, "")

	status, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, status.State)
	shown, _ := view.Overlay()
	assert.False(t, shown)
	assert.Equal(t, 0, r.Count())
}

func TestLoginGate_PollReloadsExactlyOnce(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"), loggedOutAt("https://login.example.com"), loggedIn)
	view := newFakeView()
	opener := &recordingOpener{}
	g, r := newTestGate(client, view, opener, "")

	_, err := g.Check(context.Background())
	require.NoError(t, err)

	require.NoError(t, g.Login(context.Background()))
	assert.Equal(t, []string{"https://login.example.com"}, opener.URLs())

	assert.Eventually(t, func() bool { return r.Count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !g.Polling() }, time.Second, 5*time.Millisecond)

	// Give a stray poll tick time to show up
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, r.Count())

	// A second LoggedIn observation is not a transition
	_, err = g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())

	shown, _ := view.Overlay()
	assert.False(t, shown)
	assert.True(t, view.hasNotification("Successfully logged in"))
}

func TestLoginGate_LoginTwiceStartsOnePoll(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"))
	view := newFakeView()
	opener := &recordingOpener{}
	g, r := newTestGate(client, view, opener, "")

	_, _ = g.Check(context.Background())
	require.NoError(t, g.Login(context.Background()))
	require.NoError(t, g.Login(context.Background()))
	assert.Len(t, opener.URLs(), 2, "each login action reopens the URL")
	assert.True(t, g.Polling())

	client.setLogin(loggedIn)
	assert.Eventually(t, func() bool { return r.Count() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, r.Count())
}

func TestLoginGate_OpenerFailureStillPolls(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"))
	view := newFakeView()
	opener := &recordingOpener{err: stderrors.New("no browser")}
	g, _ := newTestGate(client, view, opener, "")

	_, _ = g.Check(context.Background())
	require.NoError(t, g.Login(context.Background()))
	defer g.StopPolling()

	assert.True(t, g.Polling())
	assert.True(t, view.hasNotification("Couldn't open a browser. Visit https://login.example.com to sign in"))
}

func TestLoginGate_LoginWithoutURL(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt(""))
	view := newFakeView()
	g, _ := newTestGate(client, view, &recordingOpener{}, "")

	_, _ = g.Check(context.Background())
	err := g.Login(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.False(t, g.Polling())

	shown, url := view.Overlay()
	assert.True(t, shown, "overlay is shown even without a URL")
	assert.Empty(t, url)
}

func TestLoginGate_LoginWhenLoggedInIsNoop(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedIn)
	opener := &recordingOpener{}
	g, _ := newTestGate(client, newFakeView(), opener, "https://fallback.example.com")

	_, _ = g.Check(context.Background())
	require.NoError(t, g.Login(context.Background()))
	assert.Empty(t, opener.URLs())
	assert.False(t, g.Polling())
}

func TestLoginGate_StopPollingPreventsReload(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"))
	g, r := newTestGate(client, newFakeView(), &recordingOpener{}, "")

	_, _ = g.Check(context.Background())
	require.NoError(t, g.Login(context.Background()))
	g.StopPolling()

	client.setLogin(loggedIn)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, r.Count())
	assert.False(t, g.Polling())
}

func TestLoginGate_ManualCheckCompletesPendingLogin(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"))
	view := newFakeView()
	p := NewPresenter(view, nil, nil, time.Second)
	g := NewLoginGate(client, view, p, &recordingOpener{}, GateOptions{PollInterval: time.Hour}, nil, nil)
	r := &countingReloader{}
	g.SetReloader(r)

	_, _ = g.Check(context.Background())
	require.NoError(t, g.Login(context.Background()))

	client.setLogin(loggedIn)
	_, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())
	assert.False(t, g.Polling())
}

func TestLoginGate_RecoveryFromFailedCheckDoesNotReload(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedIn, loggedIn, loggedIn, loginResult{err: errors.New(errors.ErrNetwork, "down", "")}, loggedIn)
	view := newFakeView()
	g, r := newTestGate(client, view, nil, "https://login.example.com")

	for i := 0; i < 3; i++ {
		_, err := g.Check(context.Background())
		require.NoError(t, err)
	}
	_, err := g.Check(context.Background())
	require.Error(t, err)
	shown, _ := view.Overlay()
	assert.True(t, shown)

	status, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, status.State)
	shown, _ = view.Overlay()
	assert.False(t, shown)
	assert.Equal(t, 0, r.Count())
}

func TestLoginGate_LoginCompletedElsewhereReloads(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loggedOutAt("https://login.example.com"), loginResult{err: errors.New(errors.ErrNetwork, "down", "")}, loggedIn)
	view := newFakeView()
	g, r := newTestGate(client, view, nil, "")

	_, _ = g.Check(context.Background())
	_, _ = g.Check(context.Background())
	_, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())

	_, err = g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())
}

func TestLoginGate_FirstCheckFailedThenLoggedInReloads(t *testing.T) {
	client := newFakeClient()
	client.setLogin(loginResult{err: errors.New(errors.ErrNetwork, "down", "")}, loggedIn)
	view := newFakeView()
	g, r := newTestGate(client, view, nil, "")

	_, err := g.Check(context.Background())
	require.Error(t, err)
	_, err = g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())
}
