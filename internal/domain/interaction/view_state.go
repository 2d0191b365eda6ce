// Package interaction implements the view state machine of the concept map:
// overview/expanded mode, pan, zoom, selection and hover.
package interaction

import "brain2-conceptmap/internal/domain/conceptmap"

// ViewState is the user-facing view of the map. It is owned by a Controller
// and copied out on read.
type ViewState struct {
	Mode           conceptmap.ViewMode `json:"mode"`
	ExpandedNoteID string              `json:"expanded_note_id,omitempty"`
	Selected       *conceptmap.NodeKey `json:"selected,omitempty"`
	Hovered        *conceptmap.NodeKey `json:"hovered,omitempty"`
	Pan            conceptmap.Point    `json:"pan"`
	Zoom           float64             `json:"zoom"`
	Dragging       bool                `json:"dragging"`

	dragAnchor conceptmap.Point
}

// Settings bounds and steps the zoom factor.
type Settings struct {
	MinZoom    float64
	MaxZoom    float64
	WheelStep  float64
	ButtonStep float64
}

// DefaultSettings returns the reference zoom range and steps.
func DefaultSettings() Settings {
	return Settings{
		MinZoom:    0.4,
		MaxZoom:    2.0,
		WheelStep:  0.1,
		ButtonStep: 0.15,
	}
}

// normalized replaces an unusable zoom range or step with the defaults.
func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.MaxZoom <= 0 || s.MinZoom <= 0 || s.MinZoom >= s.MaxZoom {
		s.MinZoom, s.MaxZoom = d.MinZoom, d.MaxZoom
	}
	if s.WheelStep <= 0 {
		s.WheelStep = d.WheelStep
	}
	if s.ButtonStep <= 0 {
		s.ButtonStep = d.ButtonStep
	}
	return s
}

func defaultState() ViewState {
	return ViewState{Mode: conceptmap.ModeOverview, Zoom: 1}
}

func (s ViewState) clone() ViewState {
	if s.Selected != nil {
		sel := *s.Selected
		s.Selected = &sel
	}
	if s.Hovered != nil {
		hov := *s.Hovered
		s.Hovered = &hov
	}
	return s
}
