package engine_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/DanielSallander/Pdf-Viewer/pkg/engine"
	"github.com/DanielSallander/Pdf-Viewer/pkg/engine/enginetest"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/surface"
)

// -----------------------------------------------------------------------------
// Registry Tests
// -----------------------------------------------------------------------------

func TestRegistry(t *testing.T) {
	r := engine.NewRegistry()
	if err := r.Register(&enginetest.Stub{}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	err := r.Register(&enginetest.Stub{})
	if !werrors.IsCode(err, werrors.ErrEngineAlreadyRegistered) {
		t.Errorf("duplicate Register() = %v", err)
	}

	if _, err := r.Get("stub"); err != nil {
		t.Errorf("Get(stub) error: %v", err)
	}
	_, err = r.Get("ghostscript")
	if !werrors.IsCode(err, werrors.ErrEngineNotFound) {
		t.Errorf("Get(unknown) = %v", err)
	}

	if names := r.List(); len(names) != 1 || names[0] != "stub" {
		t.Errorf("List() = %v", names)
	}
}

// -----------------------------------------------------------------------------
// Task Tests
// -----------------------------------------------------------------------------

func TestTaskCommits(t *testing.T) {
	canvas := surface.New()
	vp := engine.Viewport{Width: 6, Height: 9, Scale: 3}

	task := engine.StartRender(context.Background(), canvas, vp, func(ctx context.Context, vp engine.Viewport) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 6, 9))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		return img, nil
	})
	if err := task.Wait(); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if w, h := canvas.Size(); w != 6 || h != 9 {
		t.Errorf("canvas size = %dx%d", w, h)
	}
	if canvas.IsBlank() {
		t.Error("committed render should not be blank")
	}
}

func TestTaskCancelNeverCommits(t *testing.T) {
	canvas := surface.New()
	started := make(chan struct{})
	var once sync.Once

	task := engine.StartRender(context.Background(), canvas, engine.Viewport{Width: 4, Height: 4, Scale: 1},
		func(ctx context.Context, vp engine.Viewport) (image.Image, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()
			// Ignore cancellation and return an image anyway.
			return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
		})

	<-started
	task.Cancel()

	err := task.Wait()
	if !engine.IsCancelled(err) {
		t.Fatalf("Wait() = %v, want cancelled", err)
	}
	if w, _ := canvas.Size(); w != 0 {
		t.Error("cancelled task must not resize the surface")
	}
}

func TestTaskPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	task := engine.StartRender(context.Background(), surface.New(), engine.Viewport{},
		func(ctx context.Context, vp engine.Viewport) (image.Image, error) { return nil, boom })

	done := make(chan error, 1)
	go func() { done <- task.Wait() }()
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("Wait() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return")
	}
}

func TestViewportPixels(t *testing.T) {
	w, h := engine.Viewport{Width: 599.6, Height: 900.2}.Pixels()
	if w != 600 || h != 900 {
		t.Errorf("Pixels() = %d, %d", w, h)
	}
}
