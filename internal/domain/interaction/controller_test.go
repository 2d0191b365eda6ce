package interaction

import (
	"math"
	"testing"

	"brain2-conceptmap/internal/domain/conceptmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(note, label string) conceptmap.NodeKey {
	return conceptmap.NodeKey{NoteID: note, Label: label}
}

func TestController_Defaults(t *testing.T) {
	c := NewController(DefaultSettings())
	s := c.State()

	assert.Equal(t, conceptmap.ModeOverview, s.Mode)
	assert.Equal(t, 1.0, s.Zoom)
	assert.Equal(t, conceptmap.Point{}, s.Pan)
	assert.Nil(t, s.Selected)
	assert.Nil(t, s.Hovered)
	assert.False(t, s.Dragging)
}

func TestController_InvalidSettingsFallBack(t *testing.T) {
	c := NewController(Settings{MinZoom: 3, MaxZoom: 1, WheelStep: 0.1})
	for i := 0; i < 50; i++ {
		c.Wheel(-1)
	}
	assert.Equal(t, 2.0, c.State().Zoom)
}

func TestController_ZoomClamp(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   float64
	}{
		{"one scroll up", []float64{-3}, 1.1},
		{"one scroll down", []float64{120}, 0.9},
		{"magnitude is ignored", []float64{-1e9}, 1.1},
		{"zero delta", []float64{0}, 1.0},
		{"NaN delta", []float64{math.NaN()}, 1.0},
		{"repeated extreme zoom in", repeat(-1e12, 100), 2.0},
		{"repeated extreme zoom out", repeat(math.Inf(1), 100), 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(DefaultSettings())
			for _, d := range tt.deltas {
				c.Wheel(d)
				z := c.State().Zoom
				require.GreaterOrEqual(t, z, 0.4)
				require.LessOrEqual(t, z, 2.0)
			}
			assert.InDelta(t, tt.want, c.State().Zoom, 1e-9)
		})
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestController_ZoomButtons(t *testing.T) {
	c := NewController(DefaultSettings())

	c.ZoomIn()
	assert.InDelta(t, 1.15, c.State().Zoom, 1e-9)
	c.ZoomOut()
	c.ZoomOut()
	assert.InDelta(t, 0.85, c.State().Zoom, 1e-9)

	for i := 0; i < 20; i++ {
		c.ZoomOut()
	}
	assert.Equal(t, 0.4, c.State().Zoom)
	for i := 0; i < 20; i++ {
		c.ZoomIn()
	}
	assert.Equal(t, 2.0, c.State().Zoom)

	c.ResetView()
	assert.Equal(t, 1.0, c.State().Zoom)
}

func TestController_Pan(t *testing.T) {
	c := NewController(DefaultSettings())

	assert.False(t, c.PointerMove(50, 50), "moves without a gesture are ignored")

	c.PointerDown(100, 100)
	assert.True(t, c.State().Dragging)
	assert.True(t, c.PointerMove(130, 90))
	assert.Equal(t, conceptmap.Point{X: 30, Y: -10}, c.State().Pan)
	c.PointerUp()
	assert.False(t, c.State().Dragging)

	c.PointerDown(0, 0)
	c.PointerMove(10, 10)
	c.PointerUp()
	assert.Equal(t, conceptmap.Point{X: 40, Y: 0}, c.State().Pan, "second drag continues from the previous offset")

	c.ResetView()
	assert.Equal(t, conceptmap.Point{}, c.State().Pan)
}

func TestController_ModeTransitionsResetView(t *testing.T) {
	c := NewController(DefaultSettings())
	c.Wheel(-1)
	c.PointerDown(0, 0)
	c.PointerMove(25, 40)
	c.ToggleSelect(key("bio", "Chlorophyll"))
	c.Hover(key("bio", "Sunlight"))

	assert.False(t, c.Back(), "back is a no-op in the overview")

	require.True(t, c.ExpandGroup("bio"))
	s := c.State()
	assert.Equal(t, conceptmap.ModeExpanded, s.Mode)
	assert.Equal(t, "bio", s.ExpandedNoteID)
	assert.Equal(t, 1.0, s.Zoom)
	assert.Equal(t, conceptmap.Point{}, s.Pan)
	assert.Nil(t, s.Selected)
	assert.Nil(t, s.Hovered)
	assert.False(t, s.Dragging)

	assert.False(t, c.ExpandGroup("phys"), "expanding requires the overview")

	c.ZoomIn()
	c.PointerDown(0, 0)
	c.PointerMove(-5, 5)
	require.True(t, c.Back())
	s = c.State()
	assert.Equal(t, conceptmap.ModeOverview, s.Mode)
	assert.Empty(t, s.ExpandedNoteID)
	assert.Equal(t, 1.0, s.Zoom)
	assert.Equal(t, conceptmap.Point{}, s.Pan)
}

func TestController_ExpandRequiresNote(t *testing.T) {
	c := NewController(DefaultSettings())
	assert.False(t, c.ExpandGroup(""))
	assert.Equal(t, conceptmap.ModeOverview, c.State().Mode)
}

func TestController_SelectionToggleAndHover(t *testing.T) {
	c := NewController(DefaultSettings())
	chl := key("bio", "Chlorophyll")
	sun := key("bio", "Sunlight")

	c.ToggleSelect(chl)
	assert.True(t, c.IsSelected(chl))

	c.ToggleSelect(sun)
	assert.True(t, c.IsSelected(sun))
	assert.False(t, c.IsSelected(chl))

	c.ToggleSelect(sun)
	assert.Nil(t, c.State().Selected)

	c.Hover(chl)
	assert.True(t, c.IsHovered(chl))
	assert.Nil(t, c.State().Selected, "hover does not select")
	c.Unhover()
	assert.False(t, c.IsHovered(chl))
}

func TestController_StateIsACopy(t *testing.T) {
	c := NewController(DefaultSettings())
	c.ToggleSelect(key("a", "x"))

	s := c.State()
	s.Selected.Label = "mutated"
	assert.True(t, c.IsSelected(key("a", "x")))
}

func TestController_Prune(t *testing.T) {
	snap := conceptmap.Compute([]conceptmap.Note{{ID: "bio", Concepts: []string{"Sunlight"}}},
		conceptmap.ModeOverview, "", conceptmap.DefaultLayoutConfig())

	c := NewController(DefaultSettings())
	c.ToggleSelect(key("bio", "Chlorophyll"))
	c.Hover(key("bio", "Sunlight"))
	c.Prune(snap)

	assert.Nil(t, c.State().Selected)
	assert.True(t, c.IsHovered(key("bio", "Sunlight")))
}

func TestController_SetSettingsReclampsZoom(t *testing.T) {
	c := NewController(DefaultSettings())
	for i := 0; i < 10; i++ {
		c.ZoomIn()
	}
	assert.Equal(t, 2.0, c.State().Zoom)

	c.SetSettings(Settings{MinZoom: 0.5, MaxZoom: 1.5, WheelStep: 0.2, ButtonStep: 0.25})
	assert.Equal(t, 1.5, c.State().Zoom)

	c.Wheel(1)
	assert.Equal(t, 1.3, c.State().Zoom)

	c.SetSettings(Settings{})
	assert.Equal(t, DefaultSettings(), c.Settings())
}
