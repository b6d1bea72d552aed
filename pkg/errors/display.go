package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[90m"
	colorBold   = "\033[1m"
)

// Formatter renders errors for humans, with optional ANSI color.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer

	// Indent is the prefix for context and suggestion lines.
	Indent string
}

// DefaultFormatter returns a Formatter writing to stderr.
// Color is enabled only when stderr is a terminal.
func DefaultFormatter() *Formatter {
	return &Formatter{
		UseColor: IsTTY(os.Stderr),
		Writer:   os.Stderr,
		Indent:   "  ",
	}
}

// IsTTY returns true if the given file is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Format renders err with the default formatter.
func Format(err error) string {
	return DefaultFormatter().Format(err)
}

// Format renders an error. ViewerErrors get code, context, cause and
// suggestions; anything else is printed with a plain "Error:" prefix.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	ve, ok := AsViewerError(err)
	if !ok {
		return f.paint(colorRed, "Error: ") + err.Error()
	}

	var sb strings.Builder
	f.writeHeader(&sb, ve)
	if ve.HasContext() {
		f.writeContext(&sb, ve)
	}
	if ve.Cause != nil {
		sb.WriteString(f.Indent)
		sb.WriteString(f.paint(colorDim, "cause: "+ve.Cause.Error()))
		sb.WriteString("\n")
	}
	if ve.HasSuggestions() {
		f.writeSuggestions(&sb, ve)
	}
	return sb.String()
}

func (f *Formatter) paint(color, s string) string {
	if !f.UseColor {
		return s
	}
	return color + s + colorReset
}

// writeHeader writes "ERROR [CODE]: message".
func (f *Formatter) writeHeader(sb *strings.Builder, ve *ViewerError) {
	if f.UseColor {
		sb.WriteString(colorRed + colorBold + "ERROR" + colorReset)
		sb.WriteString(colorRed + " [" + ve.Code + "]: " + colorReset)
	} else {
		sb.WriteString("ERROR [" + ve.Code + "]: ")
	}
	sb.WriteString(ve.Message)
	sb.WriteString("\n")
}

func (f *Formatter) writeContext(sb *strings.Builder, ve *ViewerError) {
	keys := make([]string, 0, len(ve.Context))
	for k := range ve.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(f.Indent)
		sb.WriteString(f.paint(colorYellow, key+": "))
		sb.WriteString(ve.Context[key])
		sb.WriteString("\n")
	}
}

func (f *Formatter) writeSuggestions(sb *strings.Builder, ve *ViewerError) {
	if ve.HasContext() || ve.Cause != nil {
		sb.WriteString("\n")
	}
	for i, suggestion := range ve.Suggestions {
		sb.WriteString(f.Indent)
		sb.WriteString(f.paint(colorCyan, "→ "+suggestion))
		if i < len(ve.Suggestions)-1 {
			sb.WriteString("\n")
		}
	}
}

// Display writes a formatted error to the formatter's writer.
func (f *Formatter) Display(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(f.Writer, f.Format(err))
}

// Display writes a formatted error to stderr with default settings.
func Display(err error) {
	DefaultFormatter().Display(err)
}

// Sprint returns a formatted error string without colors.
func Sprint(err error) string {
	f := &Formatter{Writer: io.Discard, Indent: "  "}
	return f.Format(err)
}

// CategoryLabel returns a human-readable label for an error category.
func CategoryLabel(cat Category) string {
	switch cat {
	case CategoryConfig:
		return "Configuration Error"
	case CategoryValidation:
		return "Validation Error"
	case CategoryLicense:
		return "License Error"
	case CategoryEngine:
		return "Engine Error"
	case CategoryCommand:
		return "Command Error"
	case CategoryNetwork:
		return "Network Error"
	case CategoryIO:
		return "I/O Error"
	case CategoryInternal:
		return "Internal Error"
	default:
		return "Error"
	}
}
