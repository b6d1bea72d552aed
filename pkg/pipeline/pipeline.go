// Package pipeline turns host updates into a rendered page. Each update is
// validated, decoded, loaded by the engine and rendered onto the surface;
// anything that cannot be shown ends the cycle with a warning instead.
//
// Every cycle is stamped with an epoch. Asynchronous continuations compare
// their epoch with the latest one before touching the view state or the
// surface and quietly drop their result when a newer cycle has started.
package pipeline

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DanielSallander/Pdf-Viewer/pkg/codec"
	"github.com/DanielSallander/Pdf-Viewer/pkg/dataview"
	"github.com/DanielSallander/Pdf-Viewer/pkg/engine"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/format"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/license"
	"github.com/DanielSallander/Pdf-Viewer/pkg/viewstate"
)

// Warning texts shown in place of the page.
const (
	CardinalityWarning   = "The visual must be filtered to one document in order to be displayed"
	EmptyPayloadWarning  = "No pdf document is selected or pdf base 64 data is empty"
	InvalidBase64Warning = "The selected pdf document is not properly formatted to base64"
	RenderFailedWarning  = "Failed to render the pdf document"
)

// DefaultOversampleScale renders pages at three times their point size so
// they stay sharp up to the maximum zoom.
const DefaultOversampleScale = 3.0

// Surface is the drawable the pipeline renders onto and clears on warnings.
type Surface interface {
	engine.Surface
	Clear()
}

// Update is one host push.
type Update struct {
	DataView *dataview.DataView `json:"dataView"`
	Viewport layout.Size        `json:"viewport"`

	// Header is the measured geometry of the header controls. When empty
	// the default header is used.
	Header []layout.Geometry `json:"header,omitempty"`
}

// Options configures a Pipeline.
type Options struct {
	Engine   engine.Engine
	Surface  Surface
	Gate     *license.Gate
	Notifier license.Notifier
	Observer Observer

	// OversampleScale defaults to DefaultOversampleScale.
	OversampleScale float64

	// MeasureNotifyDelay is how long the measures notification stays up.
	MeasureNotifyDelay time.Duration

	// Defaults are the settings used when the host sends none.
	Defaults format.Settings

	// NewFileName names documents without a bound file name. Defaults to
	// a random uuid.
	NewFileName func() string
}

// Pipeline owns the view state, the document reference and the in-flight
// load and render of one viewer.
type Pipeline struct {
	engine       engine.Engine
	surface      Surface
	gate         *license.Gate
	notifier     license.Notifier
	observer     Observer
	scale        float64
	measureDelay time.Duration
	defaults     format.Settings
	newFileName  func() string

	mu       sync.Mutex
	epoch    uint64
	current  *Cycle
	phase    Phase
	state    viewstate.ViewState
	settings format.Settings
	viewport layout.Size
	header   []layout.Geometry
	doc      *viewstate.DocumentRef
	loaded   engine.Document
	task     engine.RenderTask
	warning  string
	tooltip  *Tooltip
	landing  bool
	rendered bool
	pageSize layout.Size
}

// New creates an idle pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		engine:       opts.Engine,
		surface:      opts.Surface,
		gate:         opts.Gate,
		notifier:     opts.Notifier,
		observer:     opts.Observer,
		scale:        opts.OversampleScale,
		measureDelay: opts.MeasureNotifyDelay,
		defaults:     opts.Defaults,
		newFileName:  opts.NewFileName,
		phase:        PhaseIdle,
		state:        viewstate.New(),
		settings:     opts.Defaults,
	}
	if p.scale <= 0 {
		p.scale = DefaultOversampleScale
	}
	if p.gate == nil {
		p.gate = license.NewGate("pdfviewer_plan")
	}
	if p.newFileName == nil {
		p.newFileName = uuid.NewString
	}
	return p
}

// -----------------------------------------------------------------------------
// Update Cycle
// -----------------------------------------------------------------------------

// OnUpdate starts a new cycle for u and supersedes any cycle in flight.
// Validation runs before OnUpdate returns; loading and rendering continue in
// the background bounded by ctx.
func (p *Pipeline) OnUpdate(ctx context.Context, u Update) *Cycle {
	p.mu.Lock()
	c := p.beginLocked()
	p.viewport = u.Viewport
	p.header = u.Header
	p.warning = ""
	p.mu.Unlock()

	p.emit(Event{Type: EventRenderingStarted, Epoch: c.epoch})

	dv := u.DataView
	if !dv.HasColumns() {
		p.mu.Lock()
		if !p.currentLocked(c) {
			p.mu.Unlock()
			c.finish(OutcomeSuperseded, nil)
			return c
		}
		p.landing = true
		p.phase = PhaseSettled
		view := p.viewLocked()
		p.mu.Unlock()

		c.finish(OutcomeLanding, nil)
		p.emitSettled(c.epoch, view, OutcomeLanding, "")
		return c
	}

	p.mu.Lock()
	if !p.currentLocked(c) {
		p.mu.Unlock()
		c.finish(OutcomeSuperseded, nil)
		return c
	}
	p.landing = false
	p.settings = format.SettingsFromObjects(dv.Objects, p.defaults)
	p.phase = PhaseValidating

	in, verr := p.validate(dv)
	if verr != nil {
		stale := p.warnLocked(verr.Message)
		view := p.viewLocked()
		p.mu.Unlock()

		closeDocument(stale)
		log.Printf("[pipeline] cycle %d: %s", c.epoch, verr.Message)
		if verr.Code == werrors.ErrLicenseRequired {
			p.gate.NotifyBlocked(p.notifier, verr.Message, p.measureDelay)
		}
		c.finish(OutcomeWarning, verr)
		p.emitSettled(c.epoch, view, OutcomeWarning, "")
		return c
	}

	if !p.doc.SameFingerprint(in.payload) {
		p.state.ResetPage()
	}

	data, err := codec.Decode(in.payload)
	if err != nil {
		verr := werrors.WrapValidation(err, werrors.ErrPayloadDecode, InvalidBase64Warning)
		stale := p.warnLocked(verr.Message)
		view := p.viewLocked()
		p.mu.Unlock()

		closeDocument(stale)
		c.finish(OutcomeWarning, verr)
		p.emitSettled(c.epoch, view, OutcomeWarning, "")
		return c
	}

	p.doc = &viewstate.DocumentRef{Bytes: data, FileName: in.fileName, Fingerprint: in.payload}
	p.tooltip = in.tooltip
	p.phase = PhaseLoading
	p.mu.Unlock()

	go p.load(ctx, c, data)
	return c
}

type validated struct {
	payload  string
	fileName string
	tooltip  *Tooltip
}

// validate runs the cardinality, payload and license checks in order.
func (p *Pipeline) validate(dv *dataview.DataView) (validated, *werrors.ViewerError) {
	if n := len(dv.Rows); n != 1 {
		return validated{}, werrors.ValidationError(werrors.ErrInputCardinality, CardinalityWarning).
			WithContext("rows", strconv.Itoa(n))
	}

	payloadField, hasPayload := dv.Field(dataview.RolePdfData)
	nameField, hasName := dv.Field(dataview.RoleFileName)
	tipField, hasTip := dv.Field(dataview.RoleTooltip)

	var payload string
	if hasPayload {
		payload, _ = dv.Cell(0, payloadField)
	}
	if payload == "" {
		return validated{}, werrors.ValidationError(werrors.ErrPayloadMissing, EmptyPayloadWarning)
	}
	if !codec.IsWellFormedBase64(payload) {
		return validated{}, werrors.ValidationError(werrors.ErrPayloadInvalid, InvalidBase64Warning).
			WithContext("length", strconv.Itoa(len(payload)))
	}

	dynamic := payloadField.Column.IsMeasure ||
		(hasName && nameField.Column.IsMeasure) ||
		(hasTip && tipField.Column.IsMeasure)
	if license.RequiresLicense(dynamic) && !p.gate.IsLicensed() {
		return validated{}, werrors.LicenseError(werrors.ErrLicenseRequired, license.MeasuresBlockedMessage)
	}

	in := validated{payload: payload}
	if hasName {
		in.fileName, _ = dv.Cell(0, nameField)
	}
	if in.fileName == "" {
		in.fileName = p.newFileName()
	}
	if hasTip {
		value, _ := dv.Cell(0, tipField)
		in.tooltip = &Tooltip{DisplayName: tipField.Column.DisplayName, Value: value}
	}
	return in, nil
}

// load runs the engine load for cycle c and continues with the render.
func (p *Pipeline) load(ctx context.Context, c *Cycle, data []byte) {
	doc, err := p.engine.LoadDocument(ctx, data)
	if err != nil {
		p.fail(c, werrors.WrapEngine(err, werrors.ErrDocumentLoadFailed, "document load failed"))
		return
	}

	p.mu.Lock()
	if !p.currentLocked(c) {
		p.mu.Unlock()
		closeDocument(doc)
		c.finish(OutcomeSuperseded, nil)
		return
	}
	prev := p.loaded
	p.loaded = doc
	p.state.SetPageCount(doc.NumPages())
	p.mu.Unlock()

	closeDocument(prev)
	p.render(ctx, c, doc)
}

// render fetches the current page of doc, cancels the outstanding render
// and draws the page onto the surface.
func (p *Pipeline) render(ctx context.Context, c *Cycle, doc engine.Document) {
	p.mu.Lock()
	if !p.currentLocked(c) {
		p.mu.Unlock()
		c.finish(OutcomeSuperseded, nil)
		return
	}
	p.state.ClampPage()
	number := p.state.PageNumber
	p.mu.Unlock()

	page, err := doc.Page(ctx, number)
	if err != nil {
		p.fail(c, werrors.WrapEngine(err, werrors.ErrPageFetchFailed, "page fetch failed").
			WithContext("page", strconv.Itoa(number)))
		return
	}
	vp := page.Viewport(p.scale)

	p.mu.Lock()
	if !p.currentLocked(c) {
		p.mu.Unlock()
		c.finish(OutcomeSuperseded, nil)
		return
	}
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
	task := page.Render(ctx, p.surface, vp)
	p.task = task
	p.phase = PhaseRendering
	p.mu.Unlock()

	err = task.Wait()

	p.mu.Lock()
	if p.task == task {
		p.task = nil
	}
	if !p.currentLocked(c) || engine.IsCancelled(err) {
		p.mu.Unlock()
		c.finish(OutcomeSuperseded, nil)
		return
	}
	if err != nil {
		p.mu.Unlock()
		p.fail(c, werrors.WrapEngine(err, werrors.ErrRenderFailed, "page render failed").
			WithContext("page", strconv.Itoa(number)))
		return
	}

	p.pageSize = layout.Size{Width: vp.Width, Height: vp.Height}
	p.rendered = true
	p.state.HeaderPresentable = true
	p.state.ScrollOverflowEnabled = p.settings.ScrollOverflow
	p.state.CalculatedHeaderHeight = layout.HeaderHeight(p.headerLocked())
	p.warning = ""
	p.phase = PhaseSettled
	view := p.viewLocked()
	p.mu.Unlock()

	c.finish(OutcomeSuccess, nil)
	p.emitSettled(c.epoch, view, OutcomeSuccess, "")
}

// fail ends cycle c after an engine error. The failure is logged and shown
// as a warning.
func (p *Pipeline) fail(c *Cycle, err error) {
	p.mu.Lock()
	if !p.currentLocked(c) {
		p.mu.Unlock()
		c.finish(OutcomeSuperseded, nil)
		return
	}
	stale := p.warnLocked(RenderFailedWarning)
	view := p.viewLocked()
	p.mu.Unlock()

	closeDocument(stale)
	log.Printf("[pipeline] cycle %d failed: %v", c.epoch, err)
	c.finish(OutcomeFailed, err)
	p.emitSettled(c.epoch, view, OutcomeFailed, err.Error())
}

// -----------------------------------------------------------------------------
// State Helpers
// -----------------------------------------------------------------------------

// beginLocked stamps a new epoch and cancels the render of the cycle it
// supersedes.
func (p *Pipeline) beginLocked() *Cycle {
	p.epoch++
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
	c := newCycle(p.epoch)
	p.current = c
	return c
}

func (p *Pipeline) currentLocked(c *Cycle) bool {
	return c.epoch == p.epoch
}

// warnLocked shows message instead of the page. The surface is cleared, the
// header and scrolling are switched off and the fingerprint is reset so the
// next valid payload is treated as a new document. It returns the loaded
// document for the caller to close after unlocking.
func (p *Pipeline) warnLocked(message string) engine.Document {
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
	p.surface.Clear()
	p.state.HeaderPresentable = false
	p.state.ScrollOverflowEnabled = false
	p.doc = &viewstate.DocumentRef{Fingerprint: viewstate.WarningFingerprint}
	p.tooltip = nil
	p.rendered = false
	p.warning = message
	p.phase = PhaseSettled

	stale := p.loaded
	p.loaded = nil
	return stale
}

func (p *Pipeline) headerLocked() []layout.Geometry {
	if len(p.header) > 0 {
		return p.header
	}
	return layout.DefaultHeader(p.settings.ShowExportButton)
}

func closeDocument(doc engine.Document) {
	if doc == nil {
		return
	}
	if err := doc.Close(); err != nil {
		log.Printf("[pipeline] close document: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// View returns a snapshot of the current view.
func (p *Pipeline) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// Document returns the current document reference. It is nil before the
// first valid update.
func (p *Pipeline) Document() *viewstate.DocumentRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

// Settings returns the settings of the last update.
func (p *Pipeline) Settings() format.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// Gate returns the license gate the pipeline validates against.
func (p *Pipeline) Gate() *license.Gate {
	return p.gate
}

// Close cancels outstanding work and releases the loaded document.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.epoch++
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
	doc := p.loaded
	p.loaded = nil
	p.mu.Unlock()

	closeDocument(doc)
	return nil
}
