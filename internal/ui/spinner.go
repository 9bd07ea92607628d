package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames is the busy animation used inside Bubble Tea programs.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// SpinnerState is the lifecycle of a CLI spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerRunning
	SpinnerSucceeded
	SpinnerFailed
)

var spinnerTick = 80 * time.Millisecond

// Spinner animates a single status line while a command waits on the
// server, then replaces it with a final result line.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	state   SpinnerState
	frame   int
	started time.Time
	stop    chan struct{}
	done    chan struct{}
	width   int
}

// NewSpinner returns a spinner writing to w. A nil w means stderr.
func NewSpinner(w io.Writer, label string) *Spinner {
	if w == nil {
		w = os.Stderr
	}
	return &Spinner{w: w, label: label}
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerRunning {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerRunning
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

// SetLabel changes the text shown next to the animation.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Label returns the current text.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// State returns the spinner's lifecycle state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Success stops the animation and prints a completed line.
func (s *Spinner) Success() { s.finish(SpinnerSucceeded) }

// Fail stops the animation and prints a failed line.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

func (s *Spinner) finish(state SpinnerState) {
	s.mu.Lock()
	if s.state != SpinnerRunning {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.clearLocked()

	symbol, color := SymbolSuccess, ColorSuccess
	if state == SpinnerFailed {
		symbol, color = SymbolFail, ColorError
	}
	fmt.Fprintln(s.w, FormatStatus(symbol, color, s.label, time.Since(s.started)))
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(SpinnerFrames.Frames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	s.clearLocked()
	glyph := lipgloss.NewStyle().Foreground(ColorSecondary).Render(SpinnerFrames.Frames[s.frame])
	line := glyph + " " + s.label + "..."
	fmt.Fprint(s.w, line)
	s.width = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.width == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
	s.width = 0
}
