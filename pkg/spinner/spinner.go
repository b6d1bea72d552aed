// Package spinner shows an animated status line while the viewer loads and
// renders a document.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ANSI escape sequences for terminal control.
const (
	hideCursor     = "\033[?25l"
	showCursor     = "\033[?25h"
	carriageReturn = "\r"

	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"

	symbolSuccess = "✓"
	symbolWarning = "!"
	symbolFailure = "✗"
)

// CharSet is a sequence of animation frames.
type CharSet []string

var (
	// Braille is the default frame set.
	Braille = CharSet{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	// Line works in terminals without Unicode support.
	Line = CharSet{"|", "/", "-", "\\"}
)

// Config holds spinner options.
type Config struct {
	CharSet     CharSet
	Message     string
	RefreshRate time.Duration
	ShowElapsed bool

	// Writer defaults to os.Stderr.
	Writer io.Writer

	// IsTTY overrides terminal detection on Writer. Without a terminal the
	// spinner prints one static line instead of animating.
	IsTTY *bool
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		CharSet:     Braille,
		Message:     "Rendering...",
		RefreshRate: 80 * time.Millisecond,
		ShowElapsed: true,
		Writer:      os.Stderr,
	}
}

// Spinner is an animated status line.
type Spinner struct {
	mu sync.Mutex

	config     Config
	isTTY      bool
	active     bool
	startTime  time.Time
	frame      int
	lastOutput int
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// New creates a spinner writing message to stderr.
func New(message string) *Spinner {
	cfg := DefaultConfig()
	cfg.Message = message
	return NewWithConfig(cfg)
}

// NewWithConfig creates a spinner, filling unset options with defaults.
func NewWithConfig(config Config) *Spinner {
	if len(config.CharSet) == 0 {
		config.CharSet = Braille
	}
	if config.RefreshRate <= 0 {
		config.RefreshRate = 80 * time.Millisecond
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	isTTY := IsTerminal(config.Writer)
	if config.IsTTY != nil {
		isTTY = *config.IsTTY
	}
	return &Spinner{config: config, isTTY: isTTY}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// IsActive reports whether the spinner is running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Message
}

// Update replaces the message, also while running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Message = message
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}

	s.active = true
	s.startTime = time.Now()
	s.frame = 0

	if !s.isTTY {
		fmt.Fprintf(s.config.Writer, "%s\n", s.config.Message)
		return
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	fmt.Fprint(s.config.Writer, hideCursor)
	go s.spin(s.stopCh, s.doneCh)
}

func (s *Spinner) spin(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.config.RefreshRate)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}

	char := s.config.CharSet[s.frame%len(s.config.CharSet)]
	s.frame++

	output := char + " " + s.config.Message
	if s.config.ShowElapsed {
		output += " " + FormatElapsed(time.Since(s.startTime))
	}
	s.clearLine()
	fmt.Fprint(s.config.Writer, output)
	s.lastOutput = len(output)
}

// clearLine overwrites the last frame with spaces. s.mu must be held.
func (s *Spinner) clearLine() {
	if s.lastOutput > 0 {
		fmt.Fprint(s.config.Writer, carriageReturn+strings.Repeat(" ", s.lastOutput)+carriageReturn)
		s.lastOutput = 0
	}
}

// Stop ends the animation and erases the line.
func (s *Spinner) Stop() {
	s.halt()
}

// halt stops the animation goroutine and returns the elapsed time.
func (s *Spinner) halt() time.Duration {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0
	}
	s.active = false
	elapsed := time.Since(s.startTime)
	if !s.isTTY {
		s.mu.Unlock()
		return elapsed
	}
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	s.clearLine()
	fmt.Fprint(s.config.Writer, showCursor)
	s.mu.Unlock()
	return elapsed
}

// Success stops the spinner and prints a green check with message.
func (s *Spinner) Success(message string) { s.complete(message, symbolSuccess, colorGreen) }

// Warn stops the spinner and prints a yellow marker with message.
func (s *Spinner) Warn(message string) { s.complete(message, symbolWarning, colorYellow) }

// Fail stops the spinner and prints a red cross with message.
func (s *Spinner) Fail(message string) { s.complete(message, symbolFailure, colorRed) }

func (s *Spinner) complete(message, symbol, color string) {
	elapsed := s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		message = s.config.Message
	}

	line := message
	if s.config.ShowElapsed && !s.startTime.IsZero() {
		line += " " + FormatElapsed(elapsed)
	}
	if s.isTTY {
		fmt.Fprintf(s.config.Writer, "%s%s%s %s\n", color, symbol, colorReset, line)
	} else {
		fmt.Fprintf(s.config.Writer, "%s %s\n", symbol, line)
	}
}

// FormatElapsed renders d as "(1.2s)" or "(1m 30s)".
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}
