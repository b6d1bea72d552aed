// Package preview is a pure-Go engine. It reads page boxes and text runs
// with ledongthuc/pdf and draws the text onto a white page, which is enough
// to page through and proof a document without PDFium.
package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log"
	"strconv"

	"github.com/ledongthuc/pdf"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/DanielSallander/Pdf-Viewer/pkg/engine"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// Name is the registry name of this engine.
const Name = "preview"

// Letter size, used when a page has no usable MediaBox.
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// Engine is the text preview engine.
type Engine struct {
	maxTextRuns int
}

// New returns a preview engine drawing at most maxTextRuns runs per page.
// Zero means unlimited.
func New(maxTextRuns int) *Engine {
	return &Engine{maxTextRuns: maxTextRuns}
}

// Name returns "preview".
func (e *Engine) Name() string { return Name }

// LoadDocument parses the cross-reference table and page tree.
func (e *Engine) LoadDocument(ctx context.Context, data []byte) (doc engine.Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The reader panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = werrors.EngineErrorf(werrors.ErrDocumentLoadFailed, "malformed pdf: %v", r).
				WithContext(werrors.ContextEngine, Name)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, werrors.AttachSuggestions(werrors.WrapEngine(err, werrors.ErrDocumentLoadFailed,
			"unable to open pdf document").WithContext(werrors.ContextEngine, Name))
	}
	n := reader.NumPage()
	if n < 1 {
		return nil, werrors.EngineError(werrors.ErrDocumentLoadFailed, "pdf document has no pages").
			WithContext(werrors.ContextEngine, Name)
	}
	return &document{reader: reader, pages: n, maxTextRuns: e.maxTextRuns}, nil
}

// -----------------------------------------------------------------------------
// Document and Page
// -----------------------------------------------------------------------------

type document struct {
	reader      *pdf.Reader
	pages       int
	maxTextRuns int
}

func (d *document) NumPages() int { return d.pages }

func (d *document) Page(ctx context.Context, number int) (p engine.Page, err error) {
	if number < 1 || number > d.pages {
		return nil, werrors.EngineErrorf(werrors.ErrPageFetchFailed, "page %d out of range 1..%d", number, d.pages)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = werrors.EngineErrorf(werrors.ErrPageFetchFailed, "malformed page: %v", r).
				WithContext("page", strconv.Itoa(number))
		}
	}()

	pg := d.reader.Page(number)
	if pg.V.IsNull() {
		return nil, werrors.EngineErrorf(werrors.ErrPageFetchFailed, "page %d not found", number)
	}
	w, h := mediaBox(pg.V)
	return &page{doc: d, pdfPage: pg, number: number, width: w, height: h}, nil
}

func (d *document) Close() error { return nil }

// mediaBox walks up the page tree until a four-number MediaBox is found.
func mediaBox(v pdf.Value) (float64, float64) {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultWidth, defaultHeight
}

type page struct {
	doc           *document
	pdfPage       pdf.Page
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

func (p *page) raster(ctx context.Context, vp engine.Viewport) (img image.Image, err error) {
	w, h := vp.Pixels()
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, xdraw.Src)

	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = werrors.EngineErrorf(werrors.ErrRenderFailed, "malformed content stream: %v", r).
				WithContext("page", strconv.Itoa(p.number))
		}
	}()

	content := p.pdfPage.Content()

	for _, r := range content.Rect {
		drawRect(canvas, r, p.height, vp.Scale)
	}

	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13}
	for i, t := range content.Text {
		if p.doc.maxTextRuns > 0 && i >= p.doc.maxTextRuns {
			log.Printf("[engine] preview: page %d truncated at %d text runs", p.number, i)
			break
		}
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		d.Dot = fixed.P(int(t.X*vp.Scale), int((p.height-t.Y)*vp.Scale))
		d.DrawString(t.S)
	}
	return canvas, nil
}

var rectColor = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// drawRect outlines a content rectangle. PDF space has its origin at the
// bottom left.
func drawRect(dst *image.RGBA, r pdf.Rect, pageHeight, scale float64) {
	x0 := int(r.Min.X * scale)
	x1 := int(r.Max.X * scale)
	y0 := int((pageHeight - r.Max.Y) * scale)
	y1 := int((pageHeight - r.Min.Y) * scale)
	for x := x0; x <= x1; x++ {
		dst.Set(x, y0, rectColor)
		dst.Set(x, y1, rectColor)
	}
	for y := y0; y <= y1; y++ {
		dst.Set(x0, y, rectColor)
		dst.Set(x1, y, rectColor)
	}
}

