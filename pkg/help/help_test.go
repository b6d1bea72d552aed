package help

import (
	"bytes"
	"strings"
	"testing"
)

func TestVisibleLength(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"plain", 5},
		{StyleCommand("/open"), 5},
		{Dim("a") + Bold("bc"), 3},
		{"│ x", 3},
	}
	for _, tt := range tests {
		if got := VisibleLength(tt.in); got != tt.want {
			t.Errorf("VisibleLength(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	s := PadRight(StyleCommand("/zoom"), 8)
	if VisibleLength(s) != 8 {
		t.Errorf("expected visible width 8, got %d", VisibleLength(s))
	}
	if got := PadRight("toolong", 3); got != "toolong" {
		t.Errorf("PadRight should not truncate, got %q", got)
	}
}

func TestGetCommand(t *testing.T) {
	for _, name := range []string{"open", "/open", "/h", "q"} {
		if _, ok := GetCommand(name); !ok {
			t.Errorf("GetCommand(%q) not found", name)
		}
	}
	if _, ok := GetCommand("/rotate"); ok {
		t.Error("unexpected command /rotate")
	}
}

func TestEveryCommandHasCategory(t *testing.T) {
	seen := 0
	for _, cat := range CategoryOrder {
		seen += len(GetCommandsByCategory(cat))
	}
	if seen != len(Commands) {
		t.Errorf("%d of %d commands are in a rendered category", seen, len(Commands))
	}
}

func TestRenderFull(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).RenderFull()
	out := buf.String()

	for _, want := range []string{"PDF Viewer Commands", "Documents", "View", "General", "/open", "/zoom", "/quit", "Tab completes"} {
		if !strings.Contains(out, want) {
			t.Errorf("full help misses %q", want)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	if !r.RenderCommand("zoom") {
		t.Fatal("expected /zoom to render")
	}
	out := buf.String()
	if !strings.Contains(out, "/zoom in|out|reset") || !strings.Contains(out, "Zoom to 125%") {
		t.Errorf("unexpected output:\n%s", out)
	}

	buf.Reset()
	if r.RenderCommand("nope") {
		t.Error("expected unknown command to report false")
	}
	if !strings.Contains(buf.String(), "Command 'nope' not found") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
