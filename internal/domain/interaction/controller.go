package interaction

import (
	"math"

	"brain2-conceptmap/internal/domain/conceptmap"
)

// Controller is the only writer of a ViewState. Transition methods report
// whether the view mode changed so the caller knows to relayout.
//
// Controller is not safe for concurrent use; callers serialize access.
type Controller struct {
	settings Settings
	state    ViewState
}

// NewController returns a controller in overview mode at zoom 1.
func NewController(settings Settings) *Controller {
	return &Controller{settings: settings.normalized(), state: defaultState()}
}

// SetSettings replaces the zoom range and steps. The current zoom is clamped
// into the new range; nothing else changes.
func (c *Controller) SetSettings(settings Settings) {
	c.settings = settings.normalized()
	c.zoomBy(0)
}

// Settings returns the active settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	return c.state.clone()
}

// ExpandGroup switches from the overview to the cluster of noteID and resets
// the view. It is a no-op outside the overview.
func (c *Controller) ExpandGroup(noteID string) bool {
	if c.state.Mode != conceptmap.ModeOverview || noteID == "" {
		return false
	}
	c.state = defaultState()
	c.state.Mode = conceptmap.ModeExpanded
	c.state.ExpandedNoteID = noteID
	return true
}

// Back returns to the overview and resets the view. It is a no-op in the overview.
func (c *Controller) Back() bool {
	if c.state.Mode != conceptmap.ModeExpanded {
		return false
	}
	c.state = defaultState()
	return true
}

// PointerDown starts a pan gesture at screen position (x, y).
func (c *Controller) PointerDown(x, y float64) {
	c.state.Dragging = true
	c.state.dragAnchor = conceptmap.Point{X: x - c.state.Pan.X, Y: y - c.state.Pan.Y}
}

// PointerMove updates the pan offset while a gesture is active.
func (c *Controller) PointerMove(x, y float64) bool {
	if !c.state.Dragging {
		return false
	}
	c.state.Pan = conceptmap.Point{X: x - c.state.dragAnchor.X, Y: y - c.state.dragAnchor.Y}
	return true
}

// PointerUp ends the pan gesture; the pan offset is kept.
func (c *Controller) PointerUp() {
	c.state.Dragging = false
}

// Wheel zooms by one wheel step per scroll event. Positive deltas scroll down
// and zoom out; the magnitude of the delta is ignored.
func (c *Controller) Wheel(deltaY float64) {
	switch {
	case deltaY > 0:
		c.zoomBy(-c.settings.WheelStep)
	case deltaY < 0:
		c.zoomBy(c.settings.WheelStep)
	}
}

// ZoomIn zooms in by one button step.
func (c *Controller) ZoomIn() {
	c.zoomBy(c.settings.ButtonStep)
}

// ZoomOut zooms out by one button step.
func (c *Controller) ZoomOut() {
	c.zoomBy(-c.settings.ButtonStep)
}

// ResetView restores zoom 1 and the pan origin without touching mode or selection.
func (c *Controller) ResetView() {
	c.state.Zoom = 1
	c.state.Pan = conceptmap.Point{}
	c.state.Dragging = false
}

func (c *Controller) zoomBy(step float64) {
	z := c.state.Zoom + step
	z = math.Round(z*100) / 100
	c.state.Zoom = math.Max(c.settings.MinZoom, math.Min(c.settings.MaxZoom, z))
}

// ToggleSelect selects key, or clears the selection when key is already selected.
func (c *Controller) ToggleSelect(key conceptmap.NodeKey) {
	if c.state.Selected != nil && *c.state.Selected == key {
		c.state.Selected = nil
		return
	}
	c.state.Selected = &key
}

// ClearSelection drops the current selection.
func (c *Controller) ClearSelection() {
	c.state.Selected = nil
}

// Hover marks key as hovered.
func (c *Controller) Hover(key conceptmap.NodeKey) {
	c.state.Hovered = &key
}

// Unhover clears the hovered node.
func (c *Controller) Unhover() {
	c.state.Hovered = nil
}

// Prune forgets selection and hover targets that are no longer displayed,
// e.g. after the note set changed underneath the view.
func (c *Controller) Prune(snap conceptmap.Snapshot) {
	if c.state.Selected != nil {
		if _, ok := snap.Node(*c.state.Selected); !ok {
			c.state.Selected = nil
		}
	}
	if c.state.Hovered != nil {
		if _, ok := snap.Node(*c.state.Hovered); !ok {
			c.state.Hovered = nil
		}
	}
}
