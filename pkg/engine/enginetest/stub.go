package enginetest

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/DanielSallander/Pdf-Viewer/pkg/engine"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// Stub is a scriptable engine that counts what it is asked to do.
type Stub struct {
	// Pages is the page count of every loaded document. Zero means 1.
	Pages int

	// PagesFor overrides Pages per payload when set.
	PagesFor func(data []byte) int

	// Page size in points. Zero means 200x300.
	Width, Height float64

	LoadErr   error
	PageErr   error
	RenderErr error

	mu       sync.Mutex
	loads    int
	renders  int
	cancels  int
	closes   int
	hold     chan struct{}
	loadGate chan struct{}
}

// Name returns "stub".
func (s *Stub) Name() string { return "stub" }

// HoldRenders makes renders block until ReleaseRenders or cancellation.
func (s *Stub) HoldRenders() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
}

// ReleaseRenders unblocks every held render.
func (s *Stub) ReleaseRenders() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

// HoldLoads makes loads block until ReleaseLoads.
func (s *Stub) HoldLoads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGate = make(chan struct{})
}

// ReleaseLoads unblocks every held load.
func (s *Stub) ReleaseLoads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadGate != nil {
		close(s.loadGate)
		s.loadGate = nil
	}
}

// Counts returns loads, renders started, cancels and document closes.
func (s *Stub) Counts() (loads, renders, cancels, closes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.renders, s.cancels, s.closes
}

// LoadDocument returns a stub document.
func (s *Stub) LoadDocument(ctx context.Context, data []byte) (engine.Document, error) {
	s.mu.Lock()
	s.loads++
	gate := s.loadGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if s.LoadErr != nil {
		return nil, werrors.WrapEngine(s.LoadErr, werrors.ErrDocumentLoadFailed, "stub load failed")
	}
	pages := s.Pages
	if s.PagesFor != nil {
		pages = s.PagesFor(data)
	}
	return &stubDoc{stub: s, pages: max(1, pages)}, nil
}

type stubDoc struct {
	stub  *Stub
	pages int
}

func (d *stubDoc) NumPages() int { return d.pages }

func (d *stubDoc) Page(ctx context.Context, number int) (engine.Page, error) {
	if d.stub.PageErr != nil {
		return nil, d.stub.PageErr
	}
	if number < 1 || number > d.pages {
		return nil, werrors.EngineErrorf(werrors.ErrPageFetchFailed, "page %d out of range", number)
	}
	return &stubPage{stub: d.stub, number: number}, nil
}

func (d *stubDoc) Close() error {
	d.stub.mu.Lock()
	d.stub.closes++
	d.stub.mu.Unlock()
	return nil
}

type stubPage struct {
	stub   *Stub
	number int
}

func (p *stubPage) Number() int { return p.number }

func (p *stubPage) Viewport(scale float64) engine.Viewport {
	w, h := p.stub.Width, p.stub.Height
	if w == 0 || h == 0 {
		w, h = 200, 300
	}
	return engine.Viewport{Width: w * scale, Height: h * scale, Scale: scale}
}

// PageColor is the fill a stub render commits.
var PageColor = color.RGBA{R: 10, G: 20, B: 30, A: 255}

func (p *stubPage) Render(ctx context.Context, s engine.Surface, vp engine.Viewport) engine.RenderTask {
	p.stub.mu.Lock()
	p.stub.renders++
	hold := p.stub.hold
	p.stub.mu.Unlock()

	task := engine.StartRender(ctx, s, vp, func(ctx context.Context, vp engine.Viewport) (image.Image, error) {
		if hold != nil {
			select {
			case <-hold:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if p.stub.RenderErr != nil {
			return nil, p.stub.RenderErr
		}
		w, h := vp.Pixels()
		if w <= 0 || h <= 0 {
			return nil, werrors.EngineError(werrors.ErrRenderFailed, "empty viewport")
		}
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(PageColor), image.Point{}, draw.Src)
		return img, nil
	})
	return &stubTask{Task: task, stub: p.stub}
}

type stubTask struct {
	*engine.Task
	stub *Stub
}

func (t *stubTask) Cancel() {
	t.stub.mu.Lock()
	t.stub.cancels++
	t.stub.mu.Unlock()
	t.Task.Cancel()
}
