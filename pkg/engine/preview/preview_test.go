package preview

import (
	"context"
	"testing"

	"github.com/DanielSallander/Pdf-Viewer/pkg/engine/enginetest"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/surface"
)

func TestLoadAndRender(t *testing.T) {
	ctx := context.Background()
	e := New(0)

	doc, err := e.LoadDocument(ctx, enginetest.MinimalPDF(3))
	if err != nil {
		t.Fatalf("LoadDocument() error: %v", err)
	}
	defer doc.Close()

	if doc.NumPages() != 3 {
		t.Fatalf("NumPages() = %d, want 3", doc.NumPages())
	}

	page, err := doc.Page(ctx, 2)
	if err != nil {
		t.Fatalf("Page(2) error: %v", err)
	}
	vp := page.Viewport(3)
	if vp.Width != 600 || vp.Height != 900 {
		t.Errorf("Viewport(3) = %+v, want inherited 200x300 box at scale 3", vp)
	}

	canvas := surface.New()
	if err := page.Render(ctx, canvas, vp).Wait(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if w, h := canvas.Size(); w != 600 || h != 900 {
		t.Errorf("canvas = %dx%d", w, h)
	}
	if canvas.IsBlank() {
		t.Error("rendered page should be painted")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := New(0).LoadDocument(context.Background(), []byte("not a pdf at all"))
	if !werrors.IsCode(err, werrors.ErrDocumentLoadFailed) {
		t.Errorf("LoadDocument(garbage) = %v", err)
	}
}

func TestPageOutOfRange(t *testing.T) {
	doc, err := New(0).LoadDocument(context.Background(), enginetest.MinimalPDF(1))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 2} {
		if _, err := doc.Page(context.Background(), n); !werrors.IsCode(err, werrors.ErrPageFetchFailed) {
			t.Errorf("Page(%d) = %v", n, err)
		}
	}
}
