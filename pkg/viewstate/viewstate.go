// Package viewstate holds the mutable view parameters of the viewer and the
// reference to the currently loaded document.
package viewstate

import (
	"fmt"
	"math"
	"strconv"
)

// Zoom bounds and step.
const (
	ZoomStep    = 0.25
	MinZoom     = 0.25
	MaxZoom     = 3.0
	DefaultZoom = 1.0
)

// ViewState is the page, zoom and visibility state shown to the user.
// It is owned by one pipeline and is not safe for concurrent use on its own.
type ViewState struct {
	PageNumber             int     `json:"pageNumber"`
	NumberOfPages          int     `json:"numberOfPages"`
	ZoomLevel              float64 `json:"zoomLevel"`
	ScrollOverflowEnabled  bool    `json:"scrollOverflowEnabled"`
	HeaderPresentable      bool    `json:"headerPresentable"`
	CalculatedHeaderHeight float64 `json:"calculatedHeaderHeight"`
}

// New returns the initial state: page 1 of 1 at 100%.
func New() ViewState {
	return ViewState{
		PageNumber:    1,
		NumberOfPages: 1,
		ZoomLevel:     DefaultZoom,
	}
}

// NextPage advances one page, stopping at the last page.
func (v *ViewState) NextPage() {
	v.PageNumber = min(v.NumberOfPages, v.PageNumber+1)
	v.ClampPage()
}

// PrevPage goes back one page, stopping at page 1.
func (v *ViewState) PrevPage() {
	v.PageNumber = max(1, v.PageNumber-1)
}

// ResetPage moves to the first page.
func (v *ViewState) ResetPage() {
	v.PageNumber = 1
}

// SetPageCount records the total pages of a freshly loaded document and
// clamps the current page into range.
func (v *ViewState) SetPageCount(n int) {
	v.NumberOfPages = max(1, n)
	v.ClampPage()
}

// ClampPage forces PageNumber into [1, NumberOfPages].
func (v *ViewState) ClampPage() {
	if v.NumberOfPages < 1 {
		v.NumberOfPages = 1
	}
	v.PageNumber = max(1, min(v.PageNumber, v.NumberOfPages))
}

// ZoomIn steps the zoom up by ZoomStep.
func (v *ViewState) ZoomIn() {
	v.ZoomLevel = min(MaxZoom, roundZoom(v.ZoomLevel+ZoomStep))
}

// ZoomOut steps the zoom down by ZoomStep.
func (v *ViewState) ZoomOut() {
	v.ZoomLevel = max(MinZoom, roundZoom(v.ZoomLevel-ZoomStep))
}

// ResetZoom returns to 100%.
func (v *ViewState) ResetZoom() {
	v.ZoomLevel = DefaultZoom
}

func roundZoom(z float64) float64 {
	return math.Round(z*100) / 100
}

// ArrowState says which navigation arrows are disabled.
type ArrowState struct {
	LeftDisabled  bool `json:"leftDisabled"`
	RightDisabled bool `json:"rightDisabled"`
}

// Arrows computes the arrow state for the current page.
func (v ViewState) Arrows() ArrowState {
	single := v.NumberOfPages <= 1
	return ArrowState{
		LeftDisabled:  v.PageNumber <= 1 || single,
		RightDisabled: v.PageNumber >= v.NumberOfPages || single,
	}
}

// PageLabel renders the page indicator, e.g. "2 of 5".
func (v ViewState) PageLabel() string {
	return fmt.Sprintf("%d of %d", v.PageNumber, v.NumberOfPages)
}

// ZoomLabel renders the zoom indicator, e.g. "175%".
func (v ViewState) ZoomLabel() string {
	return strconv.FormatFloat(roundZoom(v.ZoomLevel)*100, 'f', -1, 64) + "%"
}

// -----------------------------------------------------------------------------
// Document Reference
// -----------------------------------------------------------------------------

// Sentinel fingerprint stored after a warning so the next valid payload,
// even an identical one, is treated as a new document.
const WarningFingerprint = "(dummy)"

// DocumentRef identifies the loaded document. It is replaced wholesale and
// never mutated after construction.
type DocumentRef struct {
	Bytes    []byte
	FileName string

	// Fingerprint is the raw base64 payload the bytes were decoded from.
	Fingerprint string
}

// SameFingerprint reports whether payload matches the document's fingerprint.
func (d *DocumentRef) SameFingerprint(payload string) bool {
	return d != nil && d.Fingerprint == payload
}
