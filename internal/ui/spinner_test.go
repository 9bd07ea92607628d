package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_Success(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Waiting for login")
	assert.Equal(t, SpinnerPending, s.State())

	s.Start()
	assert.Equal(t, SpinnerRunning, s.State())
	time.Sleep(3 * spinnerTick)
	s.SetLabel("Logged in")
	s.Success()

	assert.Equal(t, SpinnerSucceeded, s.State())
	text := out.String()
	assert.Contains(t, text, "Waiting for login...")
	assert.True(t, strings.HasSuffix(text, "s\n"))
	assert.Contains(t, text, SymbolSuccess+" Logged in ")
}

func TestSpinner_Fail(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Checking")
	s.Start()
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, out.String(), SymbolFail+" Checking ")
}

func TestSpinner_FinishWithoutStartIsNoop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "idle")
	s.Success()

	assert.Equal(t, SpinnerPending, s.State())
	assert.Empty(t, out.String())
}

func TestSpinner_DoubleStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "x")
	s.Start()
	s.Start()
	s.Success()
	assert.Equal(t, SpinnerSucceeded, s.State())
}
