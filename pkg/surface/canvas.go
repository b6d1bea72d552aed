// Package surface provides the drawable canvas pages are rendered onto.
package surface

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Canvas is an in-memory RGBA surface. Its size is the intrinsic pixel size
// of the last rendered page; display scaling happens on read.
type Canvas struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// New returns an empty canvas.
func New() *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}
}

// Size returns the intrinsic width and height.
func (c *Canvas) Size() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the canvas. Existing content is dropped.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img = image.NewRGBA(image.Rect(0, 0, max(0, width), max(0, height)))
}

// Clear makes every pixel transparent, keeping the size.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.img.Pix)
}

// Draw copies src onto the canvas, scaling it when sizes differ.
func (c *Canvas) Draw(src image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dst := c.img.Bounds()
	if src.Bounds().Size() == dst.Size() {
		xdraw.Copy(c.img, image.Point{}, src, src.Bounds(), xdraw.Src, nil)
		return
	}
	xdraw.ApproxBiLinear.Scale(c.img, dst, src, src.Bounds(), xdraw.Src, nil)
}

// IsBlank reports whether nothing is drawn.
func (c *Canvas) IsBlank() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.img.Pix {
		if p != 0 {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the intrinsic image.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// Scaled returns the canvas resampled to the given display size.
func (c *Canvas) Scaled(width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, max(0, width), max(0, height)))
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.img.Bounds().Empty() || out.Bounds().Empty() {
		return out
	}
	xdraw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), xdraw.Src, nil)
	return out
}

// At returns the color of one intrinsic pixel.
func (c *Canvas) At(x, y int) color.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.At(x, y)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
