package spinner

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

// TestNewWithConfigDefaults verifies that missing config values get defaults.
func TestNewWithConfigDefaults(t *testing.T) {
	s := NewWithConfig(Config{Message: "test"})

	if len(s.config.CharSet) != len(Braille) {
		t.Errorf("expected CharSet to default to Braille, got len %d", len(s.config.CharSet))
	}
	if s.config.RefreshRate != 80*time.Millisecond {
		t.Errorf("expected RefreshRate to default to 80ms, got %v", s.config.RefreshRate)
	}
	if s.config.Writer == nil {
		t.Error("expected Writer to default to os.Stderr, got nil")
	}
}

// TestNonTTYPrintsStaticLines verifies that without a terminal nothing is animated.
func TestNonTTYPrintsStaticLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithConfig(Config{Message: "Rendering report.pdf", Writer: &buf, ShowElapsed: false})

	s.Start()
	if !s.IsActive() {
		t.Error("spinner should be active after Start()")
	}
	s.Success("Page 1 of 3")

	got := buf.String()
	if got != "Rendering report.pdf\n✓ Page 1 of 3\n" {
		t.Errorf("unexpected output %q", got)
	}
	if strings.Contains(got, "\033[") {
		t.Error("non-TTY output must not contain escape sequences")
	}
	if s.IsActive() {
		t.Error("spinner should not be active after Success()")
	}
}

// TestTTYAnimatesAndClears verifies frames are drawn then erased on Stop.
func TestTTYAnimatesAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithConfig(Config{
		CharSet:     Line,
		Message:     "loading",
		RefreshRate: 5 * time.Millisecond,
		Writer:      &buf,
		IsTTY:       boolPtr(true),
	})

	s.Start()
	s.Start() // no-op
	time.Sleep(30 * time.Millisecond)
	s.Fail("broken")

	got := buf.String()
	if !strings.HasPrefix(got, hideCursor) {
		t.Errorf("expected output to start by hiding the cursor, got %q", got)
	}
	if !strings.Contains(got, "| loading") {
		t.Errorf("expected a first frame, got %q", got)
	}
	if !strings.Contains(got, showCursor) {
		t.Error("expected cursor to be restored")
	}
	if !strings.HasSuffix(got, colorRed+symbolFailure+colorReset+" broken\n") {
		t.Errorf("expected red failure line, got %q", got)
	}
}

// TestStopWithoutStart verifies Stop is safe on an idle spinner.
func TestStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithConfig(Config{Writer: &buf})
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// TestWarnUsesCurrentMessage verifies an empty message falls back to the spinner's.
func TestWarnUsesCurrentMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithConfig(Config{Message: "first", Writer: &buf})
	s.Start()
	s.Update("second")
	s.Warn("")

	if !strings.HasSuffix(buf.String(), "! second\n") {
		t.Errorf("expected warning with updated message, got %q", buf.String())
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1200 * time.Millisecond, "(1.2s)"},
		{90 * time.Second, "(1m 30s)"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
