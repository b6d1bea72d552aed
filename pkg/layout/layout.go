// Package layout computes header, container and canvas geometry from the
// view state and the viewport the host reports.
package layout

import "math"

// ScrollbarWidth is subtracted from the canvas display width so a vertical
// scrollbar never forces a horizontal one.
const ScrollbarWidth = 18.0

// Size is a width/height pair in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry is the measured box of one header control.
type Geometry struct {
	ID           string  `json:"id"`
	Top          float64 `json:"top"`
	Bottom       float64 `json:"bottom"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`
}

// HeaderHeight returns the height of the box spanning every control and its
// margins. The header origin is 0, so hidden controls reporting zero boxes
// produce a zero height.
func HeaderHeight(children []Geometry) float64 {
	var top, bottom float64
	for _, c := range children {
		top = math.Min(top, c.Top-c.MarginTop)
		bottom = math.Max(bottom, c.Bottom+c.MarginBottom)
	}
	return bottom - top
}

// Canvas is the container and surface geometry for one rendered page.
type Canvas struct {
	Container Size `json:"container"`

	// Intrinsic is the surface's pixel size, the oversampled page.
	Intrinsic Size `json:"intrinsic"`

	// Display is the styled size the surface is scaled to.
	Display Size `json:"display"`
}

// CanvasGeometry sizes the container below the header and scales the page to
// the viewport width times zoom, keeping its aspect ratio.
func CanvasGeometry(page, viewport Size, zoom, headerHeight float64, showHeader bool) Canvas {
	subtract := 0.0
	if showHeader {
		subtract = headerHeight
	}

	ratio := 0.0
	if page.Width > 0 {
		ratio = page.Height / page.Width
	}

	return Canvas{
		Container: Size{
			Width:  viewport.Width,
			Height: viewport.Height - subtract,
		},
		Intrinsic: page,
		Display: Size{
			Width:  viewport.Width*zoom - ScrollbarWidth,
			Height: viewport.Width * ratio * zoom,
		},
	}
}

// HeaderVisible reports whether the header is shown.
func HeaderVisible(presentable, showHeader bool) bool {
	return presentable && showHeader
}

// Overflow says which axes scroll. A false axis clips.
type Overflow struct {
	X bool `json:"x"`
	Y bool `json:"y"`
}

// ScrollOverflow enables scrolling on each axis where the content is at
// least as large as the container.
func ScrollOverflow(enabled bool, container, content Size) Overflow {
	if !enabled {
		return Overflow{}
	}
	return Overflow{
		X: container.Width <= content.Width,
		Y: container.Height <= content.Height,
	}
}

// LandingSize is the edge of the square placeholder shown when nothing is bound.
func LandingSize(viewport Size) float64 {
	return math.Min(viewport.Width, viewport.Height)
}

// -----------------------------------------------------------------------------
// Default Header
// -----------------------------------------------------------------------------

// Header control IDs.
const (
	ControlLeftArrow     = "left-arrow"
	ControlRightArrow    = "right-arrow"
	ControlPageIndicator = "page-indicator"
	ControlZoomPlus      = "zoom-plus"
	ControlZoomMinus     = "zoom-minus"
	ControlZoomReset     = "zoom-reset-and-indicator"
	ControlExport        = "export-to-file-button"
)

const controlMargin = 4.0

// DefaultHeader is the control geometry used when the host has not measured
// its own header. The export button is left out when it is hidden.
func DefaultHeader(showExportButton bool) []Geometry {
	box := func(id string, height float64) Geometry {
		return Geometry{
			ID:           id,
			Top:          controlMargin,
			Bottom:       controlMargin + height,
			MarginTop:    controlMargin,
			MarginBottom: controlMargin,
		}
	}

	controls := []Geometry{
		box(ControlLeftArrow, 32),
		box(ControlRightArrow, 32),
		box(ControlPageIndicator, 36),
		box(ControlZoomPlus, 32),
		box(ControlZoomMinus, 32),
		box(ControlZoomReset, 40),
	}
	if showExportButton {
		controls = append(controls, box(ControlExport, 32))
	}
	return controls
}
