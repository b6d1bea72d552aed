package layout

import "testing"

func TestHeaderHeight(t *testing.T) {
	tests := []struct {
		name     string
		children []Geometry
		want     float64
	}{
		{"empty", nil, 0},
		{"hidden controls", []Geometry{{}, {}}, 0},
		{
			name: "bounding box with margins",
			children: []Geometry{
				{Top: 4, Bottom: 36, MarginTop: 4, MarginBottom: 4},
				{Top: 2, Bottom: 50, MarginTop: 0, MarginBottom: 2},
			},
			want: 52,
		},
		{
			name:     "control above origin",
			children: []Geometry{{Top: -6, Bottom: 20, MarginTop: 2, MarginBottom: 0}},
			want:     28,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderHeight(tt.children); got != tt.want {
				t.Errorf("HeaderHeight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultHeader(t *testing.T) {
	if got := HeaderHeight(DefaultHeader(true)); got != 48 {
		t.Errorf("default header height = %v, want 48", got)
	}
	if len(DefaultHeader(false)) != len(DefaultHeader(true))-1 {
		t.Error("hidden export button should be left out")
	}
}

func TestCanvasGeometry(t *testing.T) {
	page := Size{Width: 1800, Height: 2400} // 600x800 at scale 3
	viewport := Size{Width: 400, Height: 500}

	c := CanvasGeometry(page, viewport, 1.5, 48, true)

	if c.Container != (Size{Width: 400, Height: 452}) {
		t.Errorf("Container = %+v", c.Container)
	}
	if c.Intrinsic != page {
		t.Errorf("Intrinsic = %+v", c.Intrinsic)
	}
	if c.Display.Width != 400*1.5-ScrollbarWidth {
		t.Errorf("Display.Width = %v", c.Display.Width)
	}
	ratio := page.Height / page.Width
	if want := viewport.Width * ratio * 1.5; c.Display.Height != want {
		t.Errorf("Display.Height = %v", c.Display.Height)
	}

	hidden := CanvasGeometry(page, viewport, 1, 48, false)
	if hidden.Container.Height != 500 {
		t.Errorf("header hidden should not shrink container: %v", hidden.Container.Height)
	}

	empty := CanvasGeometry(Size{}, viewport, 1, 0, false)
	if empty.Display.Height != 0 {
		t.Errorf("zero-width page should yield zero height, got %v", empty.Display.Height)
	}
}

func TestHeaderVisible(t *testing.T) {
	if !HeaderVisible(true, true) {
		t.Error("both true should show the header")
	}
	if HeaderVisible(true, false) || HeaderVisible(false, true) || HeaderVisible(false, false) {
		t.Error("header must be hidden unless both flags are set")
	}
}

func TestScrollOverflow(t *testing.T) {
	container := Size{Width: 400, Height: 452}

	tests := []struct {
		name    string
		enabled bool
		content Size
		want    Overflow
	}{
		{"disabled", false, Size{Width: 1000, Height: 1000}, Overflow{}},
		{"both axes", true, Size{Width: 582, Height: 800}, Overflow{X: true, Y: true}},
		{"vertical only", true, Size{Width: 382, Height: 533}, Overflow{Y: true}},
		{"equal counts as overflow", true, Size{Width: 400, Height: 100}, Overflow{X: true}},
		{"fits", true, Size{Width: 100, Height: 100}, Overflow{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScrollOverflow(tt.enabled, container, tt.content); got != tt.want {
				t.Errorf("ScrollOverflow() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLandingSize(t *testing.T) {
	if LandingSize(Size{Width: 300, Height: 200}) != 200 {
		t.Error("landing square should use the shorter edge")
	}
}
