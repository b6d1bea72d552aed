package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DanielSallander/Pdf-Viewer/pkg/codec"
	"github.com/DanielSallander/Pdf-Viewer/pkg/dataview"
	"github.com/DanielSallander/Pdf-Viewer/pkg/engine/enginetest"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/format"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/license"
	"github.com/DanielSallander/Pdf-Viewer/pkg/pipeline"
	"github.com/DanielSallander/Pdf-Viewer/pkg/surface"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

const (
	payloadA = "JVBERi0xLjQK"     // "%PDF-1.4\n"
	payloadB = "JVBERi0xLjcKJQ==" // "%PDF-1.7\n%"
)

var viewport = layout.Size{Width: 800, Height: 600}

type recorder struct {
	mu     sync.Mutex
	events []pipeline.Event
}

func (r *recorder) Observe(e pipeline.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []pipeline.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pipeline.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type notifier struct {
	mu       sync.Mutex
	messages []string
	clears   int
}

func (n *notifier) NotifyFeatureBlocked(message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *notifier) ClearNotification() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clears++
	return nil
}

func (n *notifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages), n.clears
}

type fixture struct {
	stub     *enginetest.Stub
	canvas   *surface.Canvas
	events   *recorder
	notifier *notifier
	p        *pipeline.Pipeline
}

func newFixture(t *testing.T, stub *enginetest.Stub, gate *license.Gate) *fixture {
	t.Helper()
	f := &fixture{
		stub:     stub,
		canvas:   surface.New(),
		events:   &recorder{},
		notifier: &notifier{},
	}
	f.p = pipeline.New(pipeline.Options{
		Engine:             stub,
		Surface:            f.canvas,
		Gate:               gate,
		Notifier:           f.notifier,
		Observer:           f.events,
		MeasureNotifyDelay: 10 * time.Millisecond,
		Defaults:           format.Defaults(),
		NewFileName:        func() string { return "generated-id" },
	})
	t.Cleanup(func() { _ = f.p.Close() })
	return f
}

func licensedGate(t *testing.T) *license.Gate {
	t.Helper()
	g := license.NewGate("pdfviewer_plan")
	<-g.Resolve(context.Background(), license.StaticProvider{Result: license.LookupResult{
		Plans: []license.Plan{{Identifier: "pdfviewer_plan", State: license.StateActive}},
	}})
	return g
}

func (f *fixture) update(t *testing.T, dv *dataview.DataView) (*pipeline.Cycle, pipeline.Outcome) {
	t.Helper()
	c := f.p.OnUpdate(context.Background(), pipeline.Update{DataView: dv, Viewport: viewport})
	return c, wait(t, c)
}

func wait(t *testing.T, c *pipeline.Cycle) pipeline.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	outcome, err := c.Wait(ctx)
	require.NoError(t, err, "cycle %d did not finish", c.Epoch())
	return outcome
}

func renders(s *enginetest.Stub) int {
	_, r, _, _ := s.Counts()
	return r
}

func loads(s *enginetest.Stub) int {
	l, _, _, _ := s.Counts()
	return l
}

// -----------------------------------------------------------------------------
// Success Path
// -----------------------------------------------------------------------------

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{Pages: 4}, licensedGate(t))

	_, outcome := f.update(t, dataview.FromPayload(payloadA, "report"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)

	v := f.p.View()
	require.Equal(t, pipeline.PhaseSettled, v.Phase)
	require.Empty(t, v.Warning)
	require.Equal(t, "1 of 4", v.PageLabel)
	require.Equal(t, "100%", v.ZoomLabel)
	require.True(t, v.HeaderVisible)
	require.True(t, v.ExportVisible)
	require.True(t, v.Arrows.LeftDisabled)
	require.False(t, v.Arrows.RightDisabled)
	require.Equal(t, "report", v.FileName)
	require.True(t, v.HasDocument)

	// 200x300 points at the oversampling scale.
	require.Equal(t, layout.Size{Width: 600, Height: 900}, v.Canvas.Intrinsic)
	require.Equal(t, 782.0, v.Canvas.Display.Width)
	require.Equal(t, 1200.0, v.Canvas.Display.Height)
	require.Equal(t, 600-v.State.CalculatedHeaderHeight, v.Canvas.Container.Height)
	require.Equal(t, layout.Overflow{X: false, Y: true}, v.Overflow)

	w, h := f.canvas.Size()
	require.Equal(t, 600, w)
	require.Equal(t, 900, h)
	require.False(t, f.canvas.IsBlank())

	require.Equal(t, []pipeline.EventType{
		pipeline.EventRenderingStarted,
		pipeline.EventViewChanged,
		pipeline.EventRenderingFinished,
	}, f.events.types())

	doc := f.p.Document()
	require.Equal(t, payloadA, doc.Fingerprint)
	require.Equal(t, "%PDF-1.4\n", string(doc.Bytes))
}

func TestFileNameFallbackAndTooltip(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, licensedGate(t))

	dv := &dataview.DataView{
		Columns: []dataview.Column{
			{DisplayName: "Notes", Roles: map[string]bool{dataview.RoleTooltip: true}},
			{DisplayName: "PDF", Roles: map[string]bool{dataview.RolePdfData: true}},
		},
		Rows: [][]any{{"quarterly", payloadA}},
	}
	_, outcome := f.update(t, dv)
	require.Equal(t, pipeline.OutcomeSuccess, outcome)

	v := f.p.View()
	require.Equal(t, "generated-id", v.FileName)
	require.Equal(t, &pipeline.Tooltip{DisplayName: "Notes", Value: "quarterly"}, v.Tooltip)
}

func TestSettingsFromObjects(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, licensedGate(t))

	dv := dataview.FromPayload(payloadA, "doc")
	dv.Objects = dataview.Objects{format.ObjectName: {
		format.PropShowHeader:     false,
		format.PropScrollOverflow: false,
	}}
	_, outcome := f.update(t, dv)
	require.Equal(t, pipeline.OutcomeSuccess, outcome)

	v := f.p.View()
	require.False(t, v.HeaderVisible)
	require.False(t, v.ExportVisible)
	require.Equal(t, layout.Overflow{}, v.Overflow)
	require.Equal(t, 600.0, v.Canvas.Container.Height)
}

func TestLandingPage(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, nil)

	_, outcome := f.update(t, &dataview.DataView{})
	require.Equal(t, pipeline.OutcomeLanding, outcome)

	v := f.p.View()
	require.True(t, v.Landing)
	require.Equal(t, 600.0, v.LandingSize)
	require.False(t, v.HeaderVisible)
	require.Zero(t, loads(f.stub))

	_, outcome = f.update(t, nil)
	require.Equal(t, pipeline.OutcomeLanding, outcome)
}

// -----------------------------------------------------------------------------
// Warnings
// -----------------------------------------------------------------------------

func TestCardinalityWarning(t *testing.T) {
	for _, rows := range [][][]any{{}, {{payloadA, "a"}, {payloadB, "b"}}} {
		f := newFixture(t, &enginetest.Stub{}, licensedGate(t))

		// Render something first so the warning has a frame to clear.
		_, outcome := f.update(t, dataview.FromPayload(payloadA, "a"))
		require.Equal(t, pipeline.OutcomeSuccess, outcome)

		dv := dataview.FromPayload("", "")
		dv.Rows = rows
		c, outcome := f.update(t, dv)
		require.Equal(t, pipeline.OutcomeWarning, outcome)
		require.True(t, werrors.IsCode(c.Cause(), werrors.ErrInputCardinality))

		v := f.p.View()
		require.Equal(t, pipeline.CardinalityWarning, v.Warning)
		require.False(t, v.HeaderVisible)
		require.False(t, v.State.ScrollOverflowEnabled)
		require.False(t, v.HasDocument)
		require.True(t, f.canvas.IsBlank())
		require.Equal(t, 1, loads(f.stub), "decode and load must not run for %d rows", len(rows))
	}
}

func TestPayloadWarnings(t *testing.T) {
	tests := []struct {
		name string
		dv   *dataview.DataView
		code string
		want string
	}{
		{
			name: "empty payload",
			dv:   dataview.FromPayload("", "doc"),
			code: werrors.ErrPayloadMissing,
			want: pipeline.EmptyPayloadWarning,
		},
		{
			name: "nil payload",
			dv: &dataview.DataView{
				Columns: dataview.FromPayload("", "").Columns,
				Rows:    [][]any{{nil, "doc"}},
			},
			code: werrors.ErrPayloadMissing,
			want: pipeline.EmptyPayloadWarning,
		},
		{
			name: "no pdf column",
			dv: &dataview.DataView{
				Columns: []dataview.Column{{DisplayName: "Name", Roles: map[string]bool{dataview.RoleFileName: true}}},
				Rows:    [][]any{{"doc"}},
			},
			code: werrors.ErrPayloadMissing,
			want: pipeline.EmptyPayloadWarning,
		},
		{
			name: "bad padding",
			dv:   dataview.FromPayload("JVBERi0xLjQ", "doc"),
			code: werrors.ErrPayloadInvalid,
			want: pipeline.InvalidBase64Warning,
		},
		{
			name: "data uri",
			dv:   dataview.FromPayload("data:application/pdf;base64,JVBERi0xLjQK", "doc"),
			code: werrors.ErrPayloadInvalid,
			want: pipeline.InvalidBase64Warning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &enginetest.Stub{}, licensedGate(t))
			c, outcome := f.update(t, tt.dv)
			require.Equal(t, pipeline.OutcomeWarning, outcome)
			require.True(t, werrors.IsCode(c.Cause(), tt.code), "cause = %v", c.Cause())
			require.Equal(t, tt.want, f.p.View().Warning)
			require.Zero(t, loads(f.stub))
		})
	}
}

func TestMeasuresNeedLicense(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, license.NewGate("pdfviewer_plan"))

	dv := dataview.FromPayload(payloadA, "doc")
	dv.Columns[1].IsMeasure = true

	c, outcome := f.update(t, dv)
	require.Equal(t, pipeline.OutcomeWarning, outcome)
	require.True(t, werrors.IsCode(c.Cause(), werrors.ErrLicenseRequired))
	require.Equal(t, license.MeasuresBlockedMessage, f.p.View().Warning)
	require.Zero(t, loads(f.stub))

	notified, _ := f.notifier.counts()
	require.Equal(t, 1, notified)
	require.Eventually(t, func() bool {
		_, clears := f.notifier.counts()
		return clears == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	_, clears := f.notifier.counts()
	require.Equal(t, 1, clears, "clear must be scheduled exactly once")
}

func TestMeasuresWithLicense(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, licensedGate(t))

	dv := dataview.FromPayload(payloadA, "doc")
	dv.Columns[0].IsMeasure = true

	_, outcome := f.update(t, dv)
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	notified, _ := f.notifier.counts()
	require.Zero(t, notified)
}

func TestWarningResetsFingerprint(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{Pages: 3}, licensedGate(t))

	_, outcome := f.update(t, dataview.FromPayload(payloadA, "doc"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	require.Equal(t, pipeline.OutcomeSuccess, wait(t, f.p.NextPage(context.Background())))
	require.Equal(t, 2, f.p.View().State.PageNumber)

	_, outcome = f.update(t, dataview.FromPayload("", "doc"))
	require.Equal(t, pipeline.OutcomeWarning, outcome)

	// The same payload after a warning counts as a new document.
	_, outcome = f.update(t, dataview.FromPayload(payloadA, "doc"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	require.Equal(t, 1, f.p.View().State.PageNumber)
}

// -----------------------------------------------------------------------------
// Change Detection and Navigation
// -----------------------------------------------------------------------------

func TestFingerprintChangeResetsPage(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{Pages: 5}, licensedGate(t))
	ctx := context.Background()

	_, outcome := f.update(t, dataview.FromPayload(payloadA, "a"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	wait(t, f.p.NextPage(ctx))
	wait(t, f.p.NextPage(ctx))
	require.Equal(t, "3 of 5", f.p.View().PageLabel)

	_, outcome = f.update(t, dataview.FromPayload(payloadA, "a"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	require.Equal(t, 3, f.p.View().State.PageNumber, "identical payload keeps the page")

	_, outcome = f.update(t, dataview.FromPayload(payloadB, "b"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	require.Equal(t, 1, f.p.View().State.PageNumber, "new payload starts at page 1")
}

func TestStalePageIsClamped(t *testing.T) {
	stub := &enginetest.Stub{Pages: 5}
	f := newFixture(t, stub, licensedGate(t))
	ctx := context.Background()

	f.update(t, dataview.FromPayload(payloadA, "a"))
	for i := 0; i < 4; i++ {
		wait(t, f.p.NextPage(ctx))
	}
	require.Equal(t, 5, f.p.View().State.PageNumber)

	stub.Pages = 2
	_, outcome := f.update(t, dataview.FromPayload(payloadA, "a"))
	require.Equal(t, pipeline.OutcomeSuccess, outcome)
	require.Equal(t, "2 of 2", f.p.View().PageLabel)
}

func TestNavigationArrows(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{Pages: 2}, licensedGate(t))
	ctx := context.Background()

	f.update(t, dataview.FromPayload(payloadA, "a"))
	require.Equal(t, pipeline.OutcomeSkipped, wait(t, f.p.PrevPage(ctx)))

	require.Equal(t, pipeline.OutcomeSuccess, wait(t, f.p.NextPage(ctx)))
	v := f.p.View()
	require.Equal(t, "2 of 2", v.PageLabel)
	require.False(t, v.Arrows.LeftDisabled)
	require.True(t, v.Arrows.RightDisabled)

	require.Equal(t, pipeline.OutcomeSkipped, wait(t, f.p.NextPage(ctx)))
	require.Equal(t, 2, renders(f.stub))
}

func TestSinglePageDisablesBothArrows(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{Pages: 1}, licensedGate(t))
	f.update(t, dataview.FromPayload(payloadA, "a"))

	v := f.p.View()
	require.True(t, v.Arrows.LeftDisabled)
	require.True(t, v.Arrows.RightDisabled)
}

func TestRerenderWithoutDocumentIsSkipped(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, nil)
	require.Equal(t, pipeline.OutcomeSkipped, wait(t, f.p.Rerender(context.Background())))
}

// -----------------------------------------------------------------------------
// Zoom
// -----------------------------------------------------------------------------

func TestZoomIsGeometryOnly(t *testing.T) {
	f := newFixture(t, &enginetest.Stub{}, licensedGate(t))
	f.update(t, dataview.FromPayload(payloadA, "a"))

	var v pipeline.View
	for i := 0; i < 3; i++ {
		v = f.p.ZoomIn()
	}
	require.Equal(t, 1.75, v.State.ZoomLevel)
	require.Equal(t, "175%", v.ZoomLabel)
	require.Equal(t, 800*1.75-layout.ScrollbarWidth, v.Canvas.Display.Width)
	require.Equal(t, 1, renders(f.stub), "zoom must not re-render")
	require.Equal(t, 1, loads(f.stub), "zoom must not reload")

	for i := 0; i < 20; i++ {
		v = f.p.ZoomOut()
	}
	require.Equal(t, 0.25, v.State.ZoomLevel)

	v = f.p.ResetZoom()
	require.Equal(t, "100%", v.ZoomLabel)
}

// -----------------------------------------------------------------------------
// Concurrency
// -----------------------------------------------------------------------------

func TestSequentialRendersCancelPrevious(t *testing.T) {
	const n = 5
	payloads := []string{payloadA, payloadB, "QUJD", "QUJDRA==", "QUJDREU="}

	stub := &enginetest.Stub{}
	stub.HoldRenders()
	f := newFixture(t, stub, licensedGate(t))

	var cycles []*pipeline.Cycle
	for i := 0; i < n; i++ {
		c := f.p.OnUpdate(context.Background(), pipeline.Update{
			DataView: dataview.FromPayload(payloads[i], "doc"),
			Viewport: viewport,
		})
		cycles = append(cycles, c)
		require.Eventually(t, func() bool { return renders(stub) == i+1 }, 2*time.Second, time.Millisecond)
	}
	stub.ReleaseRenders()

	for i, c := range cycles[:n-1] {
		require.Equal(t, pipeline.OutcomeSuperseded, wait(t, c), "cycle %d", i)
	}
	require.Equal(t, pipeline.OutcomeSuccess, wait(t, cycles[n-1]))

	_, r, cancels, closes := stub.Counts()
	require.Equal(t, n, r)
	require.Equal(t, r-1, cancels)
	require.Equal(t, n-1, closes, "superseded documents are closed")
	require.False(t, f.canvas.IsBlank())
	require.Equal(t, payloads[n-1], f.p.Document().Fingerprint)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	stub := &enginetest.Stub{}
	stub.HoldLoads()
	f := newFixture(t, stub, licensedGate(t))
	ctx := context.Background()

	first := f.p.OnUpdate(ctx, pipeline.Update{DataView: dataview.FromPayload(payloadA, "a"), Viewport: viewport})
	require.Eventually(t, func() bool { return loads(stub) == 1 }, 2*time.Second, time.Millisecond)
	second := f.p.OnUpdate(ctx, pipeline.Update{DataView: dataview.FromPayload(payloadB, "b"), Viewport: viewport})
	require.Eventually(t, func() bool { return loads(stub) == 2 }, 2*time.Second, time.Millisecond)

	stub.ReleaseLoads()

	require.Equal(t, pipeline.OutcomeSuperseded, wait(t, first))
	require.Equal(t, pipeline.OutcomeSuccess, wait(t, second))

	_, r, _, closes := stub.Counts()
	require.Equal(t, 1, r, "the stale load never renders")
	require.Equal(t, 1, closes)
	require.Equal(t, "b", f.p.View().FileName)
}

func TestNavigationDuringLoadJoinsCycle(t *testing.T) {
	stub := &enginetest.Stub{Pages: 3}
	f := newFixture(t, stub, licensedGate(t))
	ctx := context.Background()
	f.update(t, dataview.FromPayload(payloadA, "a"))

	stub.HoldLoads()
	c := f.p.OnUpdate(ctx, pipeline.Update{DataView: dataview.FromPayload(payloadA, "a"), Viewport: viewport})
	require.Eventually(t, func() bool { return loads(stub) == 2 }, 2*time.Second, time.Millisecond)

	nav := f.p.NextPage(ctx)
	require.Equal(t, c.Epoch(), nav.Epoch())

	stub.ReleaseLoads()
	require.Equal(t, pipeline.OutcomeSuccess, wait(t, c))
	require.Equal(t, 2, f.p.View().State.PageNumber)
}

// -----------------------------------------------------------------------------
// Engine Failures
// -----------------------------------------------------------------------------

func TestEngineFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		stub *enginetest.Stub
		code string
	}{
		{"load", &enginetest.Stub{LoadErr: boom}, werrors.ErrDocumentLoadFailed},
		{"page", &enginetest.Stub{PageErr: boom}, werrors.ErrPageFetchFailed},
		{"render", &enginetest.Stub{RenderErr: boom}, werrors.ErrRenderFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.stub, licensedGate(t))

			c, outcome := f.update(t, dataview.FromPayload(payloadA, "a"))
			require.Equal(t, pipeline.OutcomeFailed, outcome)
			require.True(t, werrors.IsCode(c.Cause(), tt.code), "cause = %v", c.Cause())
			require.ErrorIs(t, c.Cause(), boom)

			v := f.p.View()
			require.Equal(t, pipeline.RenderFailedWarning, v.Warning)
			require.False(t, v.HeaderVisible)
			require.Contains(t, f.events.types(), pipeline.EventRenderingFailed)
		})
	}
}

func TestRoundTripPayload(t *testing.T) {
	data, err := codec.Decode(payloadB)
	require.NoError(t, err)
	require.Equal(t, payloadB, codec.Encode(data))
}
