package pipeline

import (
	"github.com/DanielSallander/Pdf-Viewer/pkg/format"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/viewstate"
)

// Tooltip is shown when hovering the page.
type Tooltip struct {
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
}

// View is everything a host needs to draw the viewer around the surface.
type View struct {
	Epoch    uint64              `json:"epoch"`
	Phase    Phase               `json:"phase"`
	State    viewstate.ViewState `json:"state"`
	Settings format.Settings     `json:"settings"`
	Viewport layout.Size         `json:"viewport"`

	Landing     bool    `json:"landing"`
	LandingSize float64 `json:"landingSize,omitempty"`

	// Warning is empty unless the last cycle ended in a warning or failure.
	Warning string `json:"warning,omitempty"`

	PageLabel     string               `json:"pageLabel"`
	ZoomLabel     string               `json:"zoomLabel"`
	Arrows        viewstate.ArrowState `json:"arrows"`
	HeaderVisible bool                 `json:"headerVisible"`
	ExportVisible bool                 `json:"exportVisible"`

	// Canvas is zero until a page has been rendered.
	Canvas   layout.Canvas   `json:"canvas"`
	Overflow layout.Overflow `json:"overflow"`

	Tooltip     *Tooltip `json:"tooltip,omitempty"`
	FileName    string   `json:"fileName,omitempty"`
	HasDocument bool     `json:"hasDocument"`
}

// viewLocked builds the view from the pipeline's state. p.mu must be held.
func (p *Pipeline) viewLocked() View {
	s := p.state
	v := View{
		Epoch:       p.epoch,
		Phase:       p.phase,
		State:       s,
		Settings:    p.settings,
		Viewport:    p.viewport,
		Landing:     p.landing,
		Warning:     p.warning,
		PageLabel:   s.PageLabel(),
		ZoomLabel:   s.ZoomLabel(),
		Arrows:      s.Arrows(),
		HasDocument: p.doc != nil && len(p.doc.Bytes) > 0,
	}
	if p.landing {
		v.LandingSize = layout.LandingSize(p.viewport)
		return v
	}

	v.HeaderVisible = layout.HeaderVisible(s.HeaderPresentable, p.settings.ShowHeader)
	v.ExportVisible = v.HeaderVisible && p.settings.ShowExportButton

	if p.rendered {
		v.Canvas = layout.CanvasGeometry(p.pageSize, p.viewport, s.ZoomLevel,
			s.CalculatedHeaderHeight, p.settings.ShowHeader)
		v.Overflow = layout.ScrollOverflow(s.ScrollOverflowEnabled, v.Canvas.Container, v.Canvas.Display)
	}
	if p.tooltip != nil {
		t := *p.tooltip
		v.Tooltip = &t
	}
	if p.doc != nil {
		v.FileName = p.doc.FileName
	}
	return v
}
