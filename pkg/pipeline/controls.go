package pipeline

import (
	"context"

	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/viewstate"
)

// Rerender renders the current page of the loaded document again. It skips
// validation and decoding. While a load is in flight the loading cycle is
// returned; it picks up the current page when it fetches.
func (p *Pipeline) Rerender(ctx context.Context) *Cycle {
	p.mu.Lock()
	if p.phase == PhaseLoading && p.current != nil {
		c := p.current
		p.mu.Unlock()
		return c
	}
	doc := p.loaded
	if doc == nil || p.landing {
		epoch := p.epoch
		p.mu.Unlock()
		return finishedCycle(epoch, OutcomeSkipped, nil)
	}
	c := p.beginLocked()
	p.phase = PhaseRendering
	p.mu.Unlock()

	p.emit(Event{Type: EventRenderingStarted, Epoch: c.epoch})
	go p.render(ctx, c, doc)
	return c
}

// NextPage moves one page forward and renders it.
func (p *Pipeline) NextPage(ctx context.Context) *Cycle {
	return p.navigate(ctx, (*viewstate.ViewState).NextPage)
}

// PrevPage moves one page back and renders it.
func (p *Pipeline) PrevPage(ctx context.Context) *Cycle {
	return p.navigate(ctx, (*viewstate.ViewState).PrevPage)
}

func (p *Pipeline) navigate(ctx context.Context, step func(*viewstate.ViewState)) *Cycle {
	p.mu.Lock()
	before := p.state.PageNumber
	step(&p.state)
	changed := p.state.PageNumber != before
	epoch := p.epoch
	p.mu.Unlock()

	if !changed {
		return finishedCycle(epoch, OutcomeSkipped, nil)
	}
	return p.Rerender(ctx)
}

// ZoomIn steps the zoom up and recomputes the geometry.
func (p *Pipeline) ZoomIn() View {
	return p.zoom((*viewstate.ViewState).ZoomIn)
}

// ZoomOut steps the zoom down and recomputes the geometry.
func (p *Pipeline) ZoomOut() View {
	return p.zoom((*viewstate.ViewState).ZoomOut)
}

// ResetZoom returns to 100% and recomputes the geometry.
func (p *Pipeline) ResetZoom() View {
	return p.zoom((*viewstate.ViewState).ResetZoom)
}

func (p *Pipeline) zoom(step func(*viewstate.ViewState)) View {
	p.mu.Lock()
	step(&p.state)
	p.mu.Unlock()
	return p.Relayout()
}

// Relayout recomputes header and canvas geometry without rendering. The
// page is already oversampled enough for every zoom level.
func (p *Pipeline) Relayout() View {
	p.mu.Lock()
	if p.state.HeaderPresentable {
		p.state.CalculatedHeaderHeight = layout.HeaderHeight(p.headerLocked())
	}
	view := p.viewLocked()
	p.mu.Unlock()

	p.emit(Event{Type: EventViewChanged, Epoch: view.Epoch, View: &view})
	return view
}
