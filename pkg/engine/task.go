package engine

import (
	"context"
	"image"
	"sync"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// RasterFunc produces a page image for a viewport.
type RasterFunc func(ctx context.Context, vp Viewport) (image.Image, error)

// Task runs a RasterFunc in the background and commits the result to a
// surface. Engines return it from Page.Render.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
	err       error
}

// StartRender launches raster and returns its task.
func StartRender(ctx context.Context, s Surface, vp Viewport, raster RasterFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()

		img, err := raster(ctx, vp)

		t.mu.Lock()
		defer t.mu.Unlock()
		switch {
		case t.cancelled:
			t.err = cancelledError()
		case err != nil:
			t.err = err
		case ctx.Err() != nil:
			t.err = werrors.WrapEngine(ctx.Err(), werrors.ErrRenderCancelled, "render cancelled")
		default:
			w, h := vp.Pixels()
			s.Resize(w, h)
			s.Draw(img)
		}
	}()
	return t
}

// Cancel marks the task cancelled. A commit already in progress finishes
// before Cancel returns.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
	t.cancel()
}

// Wait blocks until the task has finished.
func (t *Task) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func cancelledError() error {
	return werrors.EngineError(werrors.ErrRenderCancelled, "render cancelled")
}

// IsCancelled reports whether err came from a cancelled render.
func IsCancelled(err error) bool {
	return werrors.IsCode(err, werrors.ErrRenderCancelled)
}
