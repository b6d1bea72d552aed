// Package visual wires the header controls of the viewer to the render
// pipeline, the license gate and the download service.
package visual

import (
	"context"
	"log"
	"sync"
	"time"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/export"
	"github.com/DanielSallander/Pdf-Viewer/pkg/format"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/license"
	"github.com/DanielSallander/Pdf-Viewer/pkg/pipeline"
)

// Action names a header control.
type Action string

const (
	ActionLeft      Action = "left"
	ActionRight     Action = "right"
	ActionZoomIn    Action = "zoom-in"
	ActionZoomOut   Action = "zoom-out"
	ActionZoomReset Action = "zoom-reset"
	ActionExport    Action = "export"
)

// Actions lists every control action.
func Actions() []Action {
	return []Action{ActionLeft, ActionRight, ActionZoomIn, ActionZoomOut, ActionZoomReset, ActionExport}
}

// Options configures a Visual.
type Options struct {
	Pipeline  *pipeline.Pipeline
	Notifier  license.Notifier
	Downloads export.DownloadService

	// ExportNotifyDelay is how long the blocked-export notification stays up.
	ExportNotifyDelay time.Duration
}

// Visual is the viewer as the host sees it.
type Visual struct {
	pipeline    *pipeline.Pipeline
	notifier    license.Notifier
	downloads   export.DownloadService
	exportDelay time.Duration

	mu   sync.Mutex
	last *pipeline.Update
}

// New creates a visual around an existing pipeline.
func New(opts Options) *Visual {
	return &Visual{
		pipeline:    opts.Pipeline,
		notifier:    opts.Notifier,
		downloads:   opts.Downloads,
		exportDelay: opts.ExportNotifyDelay,
	}
}

// Pipeline returns the underlying pipeline.
func (v *Visual) Pipeline() *pipeline.Pipeline {
	return v.pipeline
}

// Update runs a host update through the pipeline.
func (v *Visual) Update(ctx context.Context, u pipeline.Update) *pipeline.Cycle {
	v.mu.Lock()
	v.last = &u
	v.mu.Unlock()
	return v.pipeline.OnUpdate(ctx, u)
}

// Resize replays the last update at a new viewport size, the way a host
// pushes a fresh update when the panel is resized.
func (v *Visual) Resize(ctx context.Context, size layout.Size) (*pipeline.Cycle, error) {
	v.mu.Lock()
	if v.last == nil {
		v.mu.Unlock()
		return nil, werrors.CommandError(werrors.ErrCommandInvalidArg, "nothing to resize: no update received yet")
	}
	u := *v.last
	u.Viewport = size
	v.last = &u
	v.mu.Unlock()

	return v.pipeline.OnUpdate(ctx, u), nil
}

// Left shows the previous page.
func (v *Visual) Left(ctx context.Context) *pipeline.Cycle {
	return v.pipeline.PrevPage(ctx)
}

// Right shows the next page.
func (v *Visual) Right(ctx context.Context) *pipeline.Cycle {
	return v.pipeline.NextPage(ctx)
}

// ZoomIn steps the zoom up.
func (v *Visual) ZoomIn() pipeline.View { return v.pipeline.ZoomIn() }

// ZoomOut steps the zoom down.
func (v *Visual) ZoomOut() pipeline.View { return v.pipeline.ZoomOut() }

// ZoomReset returns the zoom to 100%.
func (v *Visual) ZoomReset() pipeline.View { return v.pipeline.ResetZoom() }

// Export sends the current document to the download service. Unlicensed
// sessions get the blocked-feature notification instead.
func (v *Visual) Export(ctx context.Context) (export.Result, error) {
	gate := v.pipeline.Gate()
	if !gate.IsLicensed() {
		gate.NotifyBlocked(v.notifier, license.ExportBlockedMessage, v.exportDelay)
		return export.Result{}, werrors.AttachSuggestions(
			werrors.LicenseError(werrors.ErrLicenseExportBlocked, license.ExportBlockedMessage))
	}

	req, err := export.NewRequest(v.pipeline.Document())
	if err != nil {
		return export.Result{}, err
	}
	if v.downloads == nil {
		return export.Result{}, werrors.InternalError(werrors.ErrExportFailed, "no download service configured")
	}

	res, err := v.downloads.Download(ctx, req)
	if err != nil {
		log.Printf("[visual] export %s failed: %v", req.FileName, err)
		return export.Result{}, err
	}
	log.Printf("[visual] exported %s (%d bytes)", req.FileName, res.Size)
	return res, nil
}

// FormattingModel describes the settings card for the current settings.
func (v *Visual) FormattingModel() format.Model {
	return format.FormattingModel(v.pipeline.Settings())
}

// -----------------------------------------------------------------------------
// Action Dispatch
// -----------------------------------------------------------------------------

// Result is what a control action produced. Cycle is set for page
// navigation and Export for exports.
type Result struct {
	Action Action          `json:"action"`
	View   pipeline.View   `json:"view"`
	Cycle  *pipeline.Cycle `json:"-"`
	Export *export.Result  `json:"export,omitempty"`
}

// Do runs the named control action.
func (v *Visual) Do(ctx context.Context, action Action) (Result, error) {
	res := Result{Action: action}
	switch action {
	case ActionLeft:
		res.Cycle = v.Left(ctx)
	case ActionRight:
		res.Cycle = v.Right(ctx)
	case ActionZoomIn:
		res.View = v.ZoomIn()
		return res, nil
	case ActionZoomOut:
		res.View = v.ZoomOut()
		return res, nil
	case ActionZoomReset:
		res.View = v.ZoomReset()
		return res, nil
	case ActionExport:
		out, err := v.Export(ctx)
		if err != nil {
			return res, err
		}
		res.Export = &out
	default:
		return res, werrors.AttachSuggestions(werrors.CommandErrorf(werrors.ErrCommandNotFound,
			"unknown action %q", action).WithContext("action", string(action)))
	}
	res.View = v.pipeline.View()
	return res, nil
}
