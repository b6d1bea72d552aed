// Package help renders the command help of the viewer shell.
//
// Commands are grouped by category and listed with their usage in a boxed
// layout. Styling uses plain ANSI codes and degrades to readable text in
// terminals without color support.
//
//	r := help.NewRenderer(os.Stdout)
//	r.RenderFull()          // all categories
//	r.RenderCommand("zoom") // one command with examples
package help

import (
	"fmt"
	"io"
	"strings"
)

// Box drawing characters.
const (
	BoxTeeLeft    = "├"
	BoxHorizontal = "─"
	BoxVertical   = "│"
)

// ANSI color codes.
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorGray   = "\033[90m"
)

// Styles used across help output.
func Header(text string) string        { return ColorBold + ColorCyan + text + ColorReset }
func StyleCategory(text string) string { return ColorBold + ColorGreen + text + ColorReset }
func StyleCommand(text string) string  { return ColorCyan + text + ColorReset }
func Argument(text string) string      { return ColorYellow + text + ColorReset }
func Dim(text string) string           { return ColorGray + text + ColorReset }
func Bold(text string) string          { return ColorBold + text + ColorReset }

// VisibleLength returns the length of s without ANSI escape sequences.
func VisibleLength(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}

// PadRight pads s with spaces to the visible width.
func PadRight(s string, width int) string {
	if n := VisibleLength(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// Renderer formats and writes help output.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) writeln(s string) {
	fmt.Fprintln(r.w, s)
}
