// Package pdfium is the raster engine, backed by PDFium compiled to
// WebAssembly. No cgo is needed.
package pdfium

import (
	"context"
	"image"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	xdraw "golang.org/x/image/draw"

	"github.com/DanielSallander/Pdf-Viewer/pkg/engine"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// Name is the registry name of this engine.
const Name = "pdfium"

// Config holds the WebAssembly pool settings.
type Config struct {
	MinIdle         int
	MaxIdle         int
	MaxTotal        int
	InstanceTimeout time.Duration
}

// Engine renders pages through one pooled PDFium instance.
type Engine struct {
	pool pdfium.Pool

	// mu serializes calls into the instance; a WebAssembly instance is
	// single threaded.
	mu       sync.Mutex
	instance pdfium.Pdfium
}

// New starts the WebAssembly runtime and takes an instance from the pool.
func New(cfg Config) (*Engine, error) {
	if cfg.MaxTotal <= 0 {
		cfg.MinIdle, cfg.MaxIdle, cfg.MaxTotal = 1, 1, 1
	}
	if cfg.InstanceTimeout <= 0 {
		cfg.InstanceTimeout = 30 * time.Second
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  cfg.MinIdle,
		MaxIdle:  cfg.MaxIdle,
		MaxTotal: cfg.MaxTotal,
	})
	if err != nil {
		return nil, werrors.AttachSuggestions(werrors.WrapEngine(err, werrors.ErrEngineUnavailable,
			"failed to initialize PDFium WebAssembly").WithContext(werrors.ContextEngine, Name))
	}

	instance, err := pool.GetInstance(cfg.InstanceTimeout)
	if err != nil {
		pool.Close()
		return nil, werrors.WrapEngine(err, werrors.ErrEngineUnavailable, "failed to get PDFium instance").
			WithContext(werrors.ContextEngine, Name)
	}

	log.Printf("[engine] pdfium ready (pool max %d)", cfg.MaxTotal)
	return &Engine{pool: pool, instance: instance}, nil
}

// Name returns "pdfium".
func (e *Engine) Name() string { return Name }

// LoadDocument opens data in the instance.
func (e *Engine) LoadDocument(ctx context.Context, data []byte) (engine.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, werrors.WrapEngine(err, werrors.ErrDocumentLoadFailed, "unable to open pdf document").
			WithContext(werrors.ContextEngine, Name)
	}

	count, err := e.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		_, _ = e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		return nil, werrors.WrapEngine(err, werrors.ErrDocumentLoadFailed, "unable to get page count")
	}

	return &document{engine: e, ref: doc.Document, pages: count.PageCount}, nil
}

// Close releases the instance and the pool.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance != nil {
		_ = e.instance.Close()
		e.instance = nil
	}
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
	return nil
}

// -----------------------------------------------------------------------------
// Document and Page
// -----------------------------------------------------------------------------

type document struct {
	engine *Engine
	ref    references.FPDF_DOCUMENT
	pages  int

	closeOnce sync.Once
}

func (d *document) NumPages() int { return d.pages }

func (d *document) Page(ctx context.Context, number int) (engine.Page, error) {
	if number < 1 || number > d.pages {
		return nil, werrors.EngineErrorf(werrors.ErrPageFetchFailed, "page %d out of range 1..%d", number, d.pages)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()

	size, err := d.engine.instance.GetPageSize(&requests.GetPageSize{Page: d.pageRequest(number)})
	if err != nil {
		return nil, werrors.WrapEngine(err, werrors.ErrPageFetchFailed, "unable to read page size").
			WithContext("page", strconv.Itoa(number))
	}
	return &page{doc: d, number: number, width: size.Width, height: size.Height}, nil
}

func (d *document) pageRequest(number int) requests.Page {
	return requests.Page{ByIndex: &requests.PageByIndex{Document: d.ref, Index: number - 1}}
}

func (d *document) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.engine.mu.Lock()
		defer d.engine.mu.Unlock()
		if d.engine.instance == nil {
			return
		}
		_, err = d.engine.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: d.ref})
	})
	return err
}

type page struct {
	doc           *document
	number        int
	width, height float64 // points
}

func (p *page) Number() int { return p.number }

func (p *page) Viewport(scale float64) engine.Viewport {
	return engine.Viewport{Width: p.width * scale, Height: p.height * scale, Scale: scale}
}

func (p *page) Render(ctx context.Context, s engine.Surface, vp engine.Viewport) engine.RenderTask {
	return engine.StartRender(ctx, s, vp, p.raster)
}

func (p *page) raster(ctx context.Context, vp engine.Viewport) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.doc.engine.mu.Lock()
	defer p.doc.engine.mu.Unlock()

	render, err := p.doc.engine.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI:  int(72*vp.Scale + 0.5),
		Page: p.doc.pageRequest(p.number),
	})
	if err != nil {
		return nil, werrors.WrapEngine(err, werrors.ErrRenderFailed, "unable to render page").
			WithContext("page", strconv.Itoa(p.number))
	}
	defer render.Cleanup()

	// The result image lives in WebAssembly memory until Cleanup.
	src := render.Result.Image
	out := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	xdraw.Draw(out, out.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return out, nil
}
