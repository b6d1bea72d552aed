// Package engine defines the contract the viewer expects from a PDF
// rendering engine: load a document, fetch a page, render it to a surface
// with a cancellable task.
package engine

import (
	"context"
	"image"
)

// Surface is where a finished render is committed.
type Surface interface {
	Resize(width, height int)
	Draw(img image.Image)
}

// Viewport is a page's pixel size at a given scale.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// Pixels returns the integer surface size for the viewport.
func (v Viewport) Pixels() (int, int) {
	return int(v.Width + 0.5), int(v.Height + 0.5)
}

// Engine loads documents. Loads cannot be cancelled; callers that lose
// interest close the returned document.
type Engine interface {
	Name() string
	LoadDocument(ctx context.Context, data []byte) (Document, error)
}

// Document is a loaded pdf.
type Document interface {
	NumPages() int

	// Page fetches a page by 1-based number.
	Page(ctx context.Context, number int) (Page, error)

	Close() error
}

// Page is a fetched page.
type Page interface {
	Number() int

	// Viewport returns the page size in pixels at scale (1 = 72 dpi).
	Viewport(scale float64) Viewport

	// Render starts drawing the page onto s. The returned task commits to s
	// only if it has not been cancelled.
	Render(ctx context.Context, s Surface, vp Viewport) RenderTask
}

// RenderTask is an in-flight render.
type RenderTask interface {
	// Cancel stops the render. After Cancel returns the task never touches
	// its surface.
	Cancel()

	// Wait blocks until the render finished, failed or was cancelled.
	Wait() error
}
