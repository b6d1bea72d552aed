// Package shell provides the interactive viewer REPL.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/DanielSallander/Pdf-Viewer/pkg/codec"
	"github.com/DanielSallander/Pdf-Viewer/pkg/dataview"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/help"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/pipeline"
	"github.com/DanielSallander/Pdf-Viewer/pkg/spinner"
	"github.com/DanielSallander/Pdf-Viewer/pkg/surface"
	"github.com/DanielSallander/Pdf-Viewer/pkg/visual"
)

const prompt = "\033[32mpdfviewer>\033[0m "

// Shell is the interactive command-line interface.
type Shell struct {
	visual   *visual.Visual
	canvas   *surface.Canvas
	rl       *readline.Instance
	out      io.Writer
	prompter Prompter
	viewport layout.Size

	// isTTY forces spinner animation on or off; nil detects it.
	isTTY *bool
}

// Config holds shell configuration.
type Config struct {
	HistoryFile string

	// Viewport is the panel size used until /resize.
	Viewport layout.Size
}

// New creates a shell on the terminal.
func New(v *visual.Visual, canvas *surface.Canvas, cfg Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewCompleter(),
	})
	if err != nil {
		return nil, err
	}

	s := newShell(v, canvas, rl.Stdout(), &readlinePrompter{rl: rl, prompt: prompt}, cfg.Viewport)
	s.rl = rl
	return s, nil
}

func newShell(v *visual.Visual, canvas *surface.Canvas, out io.Writer, p Prompter, viewport layout.Size) *Shell {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = layout.Size{Width: 800, Height: 600}
	}
	return &Shell{visual: v, canvas: canvas, out: out, prompter: p, viewport: viewport}
}

// Run reads commands until /quit, EOF or ctx ends.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	fmt.Fprintln(s.out, "Open a document with /open <file.pdf> or bind a table with /table <file.csv>.")
	fmt.Fprintln(s.out, "Commands: /next, /prev, /zoom, /resize, /export, /state, /save, /help, /quit")
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, werrors.Sprint(err))
		}
	}
}

var errQuit = errors.New("quit")

// Exec runs one input line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return werrors.AttachSuggestions(werrors.CommandError(werrors.ErrCommandNotFound,
			"commands start with /").WithContext("input", line))
	}

	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return errQuit
	case "/help", "/h":
		s.printHelp(args)
	case "/open":
		return s.handleOpen(ctx, args)
	case "/table":
		return s.handleTable(ctx, args)
	case "/next":
		s.track(ctx, s.visual.Right(ctx), "Next page")
	case "/prev":
		s.track(ctx, s.visual.Left(ctx), "Previous page")
	case "/zoom":
		return s.handleZoom(args)
	case "/resize":
		return s.handleResize(ctx, args)
	case "/export":
		return s.handleExport(ctx)
	case "/state":
		s.printView(s.visual.Pipeline().View())
	case "/settings":
		s.printSettings()
	case "/license":
		s.printLicense()
	case "/save":
		return s.handleSave(args)
	default:
		return werrors.AttachSuggestions(werrors.CommandErrorf(werrors.ErrCommandNotFound,
			"unknown command: %s", cmd).WithContext("command", cmd))
	}
	return nil
}

// -----------------------------------------------------------------------------
// Document Commands
// -----------------------------------------------------------------------------

func (s *Shell) handleOpen(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("/open <file.pdf> [name]")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot read document").WithContext("path", args[0])
	}

	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}
	s.update(ctx, dataview.FromPayload(codec.Encode(data), name), "Opening "+filepath.Base(args[0]))
	return nil
}

func (s *Shell) handleTable(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("/table <file.csv>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot read table").WithContext("path", args[0])
	}
	dv, err := dataview.FromCSV(data)
	if err != nil {
		return err
	}
	s.update(ctx, dv, fmt.Sprintf("Binding %s (%d rows)", filepath.Base(args[0]), len(dv.Rows)))
	return nil
}

func (s *Shell) update(ctx context.Context, dv *dataview.DataView, label string) {
	s.track(ctx, s.visual.Update(ctx, pipeline.Update{DataView: dv, Viewport: s.viewport}), label)
}

// track shows a spinner until c settles and prints how it ended.
func (s *Shell) track(ctx context.Context, c *pipeline.Cycle, label string) {
	spin := spinner.NewWithConfig(spinner.Config{
		Message:     label,
		ShowElapsed: true,
		Writer:      s.out,
		IsTTY:       s.isTTY,
	})
	spin.Start()

	outcome, err := c.Wait(ctx)
	if err != nil {
		spin.Fail("Interrupted")
		return
	}

	view := s.visual.Pipeline().View()
	switch outcome {
	case pipeline.OutcomeSuccess:
		spin.Success(fmt.Sprintf("%s, page %s at %s", view.FileName, view.PageLabel, view.ZoomLabel))
	case pipeline.OutcomeWarning:
		spin.Warn(view.Warning)
	case pipeline.OutcomeFailed:
		spin.Fail(view.Warning)
		if cause := c.Cause(); cause != nil {
			fmt.Fprintln(s.out, werrors.Sprint(cause))
		}
	case pipeline.OutcomeLanding:
		spin.Success("No data bound, showing the landing page")
	case pipeline.OutcomeSkipped:
		spin.Stop()
		fmt.Fprintln(s.out, "Nothing to render.")
	case pipeline.OutcomeSuperseded:
		spin.Warn("Superseded by a newer update")
	}
}

// -----------------------------------------------------------------------------
// View Commands
// -----------------------------------------------------------------------------

func (s *Shell) handleZoom(args []string) error {
	if len(args) != 1 {
		return usage("/zoom in|out|reset")
	}
	var view pipeline.View
	switch args[0] {
	case "in":
		view = s.visual.ZoomIn()
	case "out":
		view = s.visual.ZoomOut()
	case "reset":
		view = s.visual.ZoomReset()
	default:
		return werrors.CommandErrorf(werrors.ErrCommandInvalidArg, "unknown zoom %q", args[0]).
			WithSuggestion("Use /zoom in, /zoom out or /zoom reset")
	}
	fmt.Fprintf(s.out, "Zoom: %s\n", view.ZoomLabel)
	return nil
}

func (s *Shell) handleResize(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("/resize <width> <height>")
	}
	w, errW := strconv.ParseFloat(args[0], 64)
	h, errH := strconv.ParseFloat(args[1], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return werrors.CommandErrorf(werrors.ErrCommandInvalidArg, "invalid size %s x %s", args[0], args[1]).
			WithSuggestion("Width and height must be positive numbers")
	}

	s.viewport = layout.Size{Width: w, Height: h}
	c, err := s.visual.Resize(ctx, s.viewport)
	if err != nil {
		fmt.Fprintf(s.out, "Viewport set to %gx%g\n", w, h)
		return nil
	}
	s.track(ctx, c, fmt.Sprintf("Resizing to %gx%g", w, h))
	return nil
}

func (s *Shell) handleExport(ctx context.Context) error {
	res, err := s.visual.Export(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Exported %d bytes to %s\n", res.Size, res.Location)
	if res.SHA256 != "" {
		fmt.Fprintf(s.out, "  sha256: %s\n", res.SHA256)
	}
	return nil
}

// handleSave writes the surface to a PNG, asking before overwriting.
func (s *Shell) handleSave(args []string) error {
	if len(args) < 1 || len(args) > 2 || (len(args) == 2 && args[1] != "display") {
		return usage("/save <file.png> [display]")
	}
	if s.canvas == nil || s.canvas.IsBlank() {
		return werrors.AttachSuggestions(werrors.EngineError(werrors.ErrNoDocument, "nothing has been rendered"))
	}

	path := args[0]
	if _, err := os.Stat(path); err == nil && s.prompter != nil {
		ok, err := s.prompter.Confirm(fmt.Sprintf("%s exists. Overwrite?", path))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, "Save cancelled.")
			return nil
		}
	}

	img := s.canvas.Snapshot()
	if len(args) == 2 {
		d := s.visual.Pipeline().View().Canvas.Display
		img = s.canvas.Scaled(int(d.Width+0.5), int(d.Height+0.5))
	}

	f, err := os.Create(path)
	if err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot create image").WithContext("path", path)
	}
	if err := surface.WritePNG(f, img); err != nil {
		f.Close()
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot write image").WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOWriteFailed, "cannot write image").WithContext("path", path)
	}
	b := img.Bounds()
	fmt.Fprintf(s.out, "Saved %dx%d image to %s\n", b.Dx(), b.Dy(), path)
	return nil
}

// -----------------------------------------------------------------------------
// Output
// -----------------------------------------------------------------------------

func usage(text string) error {
	return werrors.CommandError(werrors.ErrCommandMissingArgs, "usage: "+text)
}

func (s *Shell) printHelp(args []string) {
	r := help.NewRenderer(s.out)
	if len(args) > 0 {
		r.RenderCommand(args[0])
		return
	}
	r.RenderFull()
}

func (s *Shell) printView(v pipeline.View) {
	fmt.Fprintf(s.out, "Phase: %s (epoch %d)\n", v.Phase, v.Epoch)
	if v.Landing {
		fmt.Fprintln(s.out, "  Landing page")
		return
	}
	if v.FileName != "" {
		fmt.Fprintf(s.out, "  File: %s\n", v.FileName)
	}
	fmt.Fprintf(s.out, "  Page: %s  Zoom: %s\n", v.PageLabel, v.ZoomLabel)
	fmt.Fprintf(s.out, "  Viewport: %gx%g  Header: %t  Export: %t\n",
		v.Viewport.Width, v.Viewport.Height, v.HeaderVisible, v.ExportVisible)
	if v.Canvas.Intrinsic.Width > 0 {
		fmt.Fprintf(s.out, "  Canvas: %.0fx%.0f shown at %.0fx%.0f\n",
			v.Canvas.Intrinsic.Width, v.Canvas.Intrinsic.Height,
			v.Canvas.Display.Width, v.Canvas.Display.Height)
	}
	if v.Tooltip != nil {
		fmt.Fprintf(s.out, "  Tooltip: %s = %s\n", v.Tooltip.DisplayName, v.Tooltip.Value)
	}
	if v.Warning != "" {
		fmt.Fprintf(s.out, "  \033[33mWarning: %s\033[0m\n", v.Warning)
	}
}

func (s *Shell) printSettings() {
	for _, card := range s.visual.FormattingModel().Cards {
		fmt.Fprintf(s.out, "%s:\n", card.DisplayName)
		for _, group := range card.Groups {
			for _, slice := range group.Slices {
				mark := "off"
				if slice.Control.Value {
					mark = "on"
				}
				fmt.Fprintf(s.out, "  %-20s %s\n", slice.DisplayName, mark)
			}
		}
	}
}

func (s *Shell) printLicense() {
	st := s.visual.Pipeline().Gate().State()
	switch {
	case !st.Resolved:
		fmt.Fprintln(s.out, "License: lookup pending")
	case st.IsLicensed:
		fmt.Fprintln(s.out, "License: active")
	default:
		fmt.Fprintln(s.out, "License: none (measures and export are blocked)")
	}
}
