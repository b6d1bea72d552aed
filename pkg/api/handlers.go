package api

import (
	"bytes"
	"context"
	"math"
	"net/http"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/pipeline"
	"github.com/DanielSallander/Pdf-Viewer/pkg/surface"
	"github.com/DanielSallander/Pdf-Viewer/pkg/visual"
)

// ViewerHandler serves one visual to its host.
type ViewerHandler struct {
	// ctx bounds background loads and renders. Request contexts end when
	// the handler returns, so cycles run under the server's context.
	ctx    context.Context
	visual *visual.Visual
	canvas *surface.Canvas
	hub    *Hub
}

// NewViewerHandler creates handlers for v. canvas is the surface the
// pipeline draws on.
func NewViewerHandler(ctx context.Context, v *visual.Visual, canvas *surface.Canvas, hub *Hub) *ViewerHandler {
	return &ViewerHandler{ctx: ctx, visual: v, canvas: canvas, hub: hub}
}

// RegisterRoutes adds the viewer endpoints to rt.
func (h *ViewerHandler) RegisterRoutes(rt *Router) {
	rt.GET("/api/health", h.handleHealth)
	rt.POST("/api/update", h.handleUpdate)
	rt.POST("/api/resize", h.handleResize)
	rt.POST("/api/controls/:action", h.handleControl)
	rt.GET("/api/view", h.handleView)
	rt.GET("/api/canvas.png", h.handleCanvas)
	rt.GET("/api/formatting-model", h.handleFormattingModel)
	rt.GET("/api/license", h.handleLicense)
	if h.hub != nil {
		rt.GET("/ws", NewWebSocketHandler(h.hub).HandleFunc())
	}
}

// CycleResponse reports a started cycle. Outcome is set only when the
// request asked to wait with ?wait=1.
type CycleResponse struct {
	Epoch   uint64           `json:"epoch"`
	Outcome pipeline.Outcome `json:"outcome,omitempty"`
	Error   string           `json:"error,omitempty"`
	View    pipeline.View    `json:"view"`
}

// ResizeRequest is the body of POST /api/resize.
type ResizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (h *ViewerHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": h.clientCount(),
	})
}

func (h *ViewerHandler) clientCount() int {
	if h.hub == nil {
		return 0
	}
	return h.hub.ClientCount()
}

func (h *ViewerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var u pipeline.Update
	if err := ReadJSON(r, &u); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid update body: "+err.Error())
		return
	}
	c := h.visual.Update(h.ctx, u)
	h.writeCycle(w, r, c)
}

func (h *ViewerHandler) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid resize body: "+err.Error())
		return
	}
	c, err := h.visual.Resize(h.ctx, layout.Size{Width: req.Width, Height: req.Height})
	if err != nil {
		WriteViewerError(w, err)
		return
	}
	h.writeCycle(w, r, c)
}

func (h *ViewerHandler) handleControl(w http.ResponseWriter, r *http.Request) {
	action := visual.Action(PathParam(r, "action"))
	res, err := h.visual.Do(h.ctx, action)
	if err != nil {
		WriteViewerError(w, err)
		return
	}
	if res.Cycle != nil && wantsWait(r) {
		if _, err := res.Cycle.Wait(r.Context()); err == nil {
			res.View = h.visual.Pipeline().View()
		}
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *ViewerHandler) writeCycle(w http.ResponseWriter, r *http.Request, c *pipeline.Cycle) {
	resp := CycleResponse{Epoch: c.Epoch()}
	if wantsWait(r) {
		outcome, err := c.Wait(r.Context())
		if err != nil {
			WriteError(w, http.StatusGatewayTimeout, "cycle_timeout", err.Error())
			return
		}
		resp.Outcome = outcome
		if cause := c.Cause(); cause != nil {
			resp.Error = cause.Error()
		}
	}
	resp.View = h.visual.Pipeline().View()
	WriteJSON(w, http.StatusAccepted, resp)
}

func wantsWait(r *http.Request) bool {
	switch r.URL.Query().Get("wait") {
	case "1", "true":
		return true
	}
	return false
}

func (h *ViewerHandler) handleView(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.visual.Pipeline().View())
}

// handleCanvas writes the surface as PNG at its intrinsic size, or at the
// display size with ?display=1.
func (h *ViewerHandler) handleCanvas(w http.ResponseWriter, r *http.Request) {
	if h.canvas == nil || h.canvas.IsBlank() {
		WriteViewerError(w, werrors.EngineError(werrors.ErrNoDocument, "nothing has been rendered"))
		return
	}

	img := h.canvas.Snapshot()
	if r.URL.Query().Get("display") == "1" {
		d := h.visual.Pipeline().View().Canvas.Display
		img = h.canvas.Scaled(int(math.Round(d.Width)), int(math.Round(d.Height)))
	}

	var buf bytes.Buffer
	if err := surface.WritePNG(&buf, img); err != nil {
		WriteViewerError(w, werrors.WrapInternal(err, werrors.ErrInternalError, "cannot encode canvas"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ViewerHandler) handleFormattingModel(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.visual.FormattingModel())
}

func (h *ViewerHandler) handleLicense(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.visual.Pipeline().Gate().State())
}
