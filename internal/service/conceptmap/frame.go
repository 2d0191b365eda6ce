package conceptmap

import (
	domain "brain2-conceptmap/internal/domain/conceptmap"
	"brain2-conceptmap/internal/domain/interaction"
)

// Frame is everything a client needs to draw the map once.
type Frame struct {
	Version        uint64           `json:"version"`
	Mode           domain.ViewMode  `json:"mode"`
	ExpandedNoteID string           `json:"expanded_note_id,omitempty"`
	ExpandedGroup  *ClusterView     `json:"expanded_group,omitempty"`
	Empty          bool             `json:"empty"`
	Canvas         Canvas           `json:"canvas"`
	Transform      Transform        `json:"transform"`
	Clusters       []ClusterView    `json:"clusters"`
	Nodes          []NodeView       `json:"nodes"`
	Connections    []ConnectionView `json:"connections"`
	Selection      *SelectionDetail `json:"selection,omitempty"`
	Sweep          SweepStatus      `json:"sweep"`
}

// Canvas is the logical drawing surface.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Transform maps canvas coordinates to the screen: screen = canvas*zoom + pan.
type Transform struct {
	PanX     float64 `json:"pan_x"`
	PanY     float64 `json:"pan_y"`
	Zoom     float64 `json:"zoom"`
	Dragging bool    `json:"dragging"`
}

// ClusterView is one group's circle in the overview.
type ClusterView struct {
	NoteID   string       `json:"note_id"`
	Name     string       `json:"name"`
	Color    string       `json:"color"`
	Center   domain.Point `json:"center"`
	Radius   float64      `json:"radius"`
	Concepts int          `json:"concepts"`
}

// NodeView is one positioned concept bubble.
type NodeView struct {
	ID       int     `json:"id"`
	Key      string  `json:"key"`
	NoteID   string  `json:"note_id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Color    string  `json:"color"`
	Selected bool    `json:"selected"`
	Hovered  bool    `json:"hovered"`
	Dimmed   bool    `json:"dimmed"`
}

// ConnectionView is one drawable edge with its endpoint positions.
type ConnectionView struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	NoteID      string       `json:"note_id"`
	Explanation string       `json:"explanation"`
	FromPos     domain.Point `json:"from_pos"`
	ToPos       domain.Point `json:"to_pos"`
	Highlighted bool         `json:"highlighted"`
	Dimmed      bool         `json:"dimmed"`
}

// SelectionDetail describes the selected node and its relationships.
type SelectionDetail struct {
	NoteID    string           `json:"note_id"`
	Label     string           `json:"label"`
	GroupName string           `json:"group_name"`
	Related   []RelatedConcept `json:"related"`
}

// RelatedConcept is one relationship of the selected node.
type RelatedConcept struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
	Outgoing    bool   `json:"outgoing"`
}

// SweepStatus reports the state of connection loading.
type SweepStatus struct {
	Loading      bool     `json:"loading"`
	Generation   uint64   `json:"generation"`
	LastSweepID  string   `json:"last_sweep_id,omitempty"`
	FailedGroups []string `json:"failed_groups,omitempty"`
}

// buildFrame projects a snapshot through the view state. It only reads its
// inputs.
func buildFrame(
	snap domain.Snapshot,
	ctrl *interaction.Controller,
	conns []domain.Connection,
	cfg domain.LayoutConfig,
) Frame {
	state := ctrl.State()
	edges := domain.ResolveEdges(conns, snap.Nodes)

	frame := Frame{
		Mode:           snap.Mode,
		ExpandedNoteID: snap.ExpandedNoteID,
		Empty:          snap.Empty(),
		Canvas:         Canvas{Width: cfg.Width, Height: cfg.Height},
		Transform: Transform{
			PanX:     state.Pan.X,
			PanY:     state.Pan.Y,
			Zoom:     state.Zoom,
			Dragging: state.Dragging,
		},
		Clusters:    []ClusterView{},
		Nodes:       make([]NodeView, 0, len(snap.Nodes)),
		Connections: make([]ConnectionView, 0, len(edges)),
	}

	colors := make(map[string]string, len(snap.Groups))
	names := make(map[string]string, len(snap.Groups))
	for _, g := range snap.Groups {
		colors[g.NoteID] = g.Color
		names[g.NoteID] = g.Name
		view := ClusterView{NoteID: g.NoteID, Name: g.Name, Color: g.Color, Concepts: len(g.Concepts)}
		if snap.Mode == domain.ModeExpanded {
			if g.NoteID == snap.ExpandedNoteID {
				expanded := view
				frame.ExpandedGroup = &expanded
			}
			continue
		}
		if g.Bounds != nil {
			view.Center = g.Bounds.Center
			view.Radius = g.Bounds.Radius
		}
		frame.Clusters = append(frame.Clusters, view)
	}

	for _, n := range snap.Nodes {
		key := n.Key()
		frame.Nodes = append(frame.Nodes, NodeView{
			ID:       n.ID,
			Key:      key.String(),
			NoteID:   n.NoteID,
			Label:    n.Label,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Size:     n.Size,
			Color:    colors[n.NoteID],
			Selected: ctrl.IsSelected(key),
			Hovered:  ctrl.IsHovered(key),
			Dimmed:   ctrl.NodeDimmed(key, edges),
		})
	}

	for _, e := range edges {
		frame.Connections = append(frame.Connections, ConnectionView{
			From:        e.From,
			To:          e.To,
			NoteID:      e.NoteID,
			Explanation: e.Explanation,
			FromPos:     e.FromNode.Position,
			ToPos:       e.ToNode.Position,
			Highlighted: ctrl.EdgeHighlighted(e.Connection),
			Dimmed:      ctrl.EdgeDimmed(e.Connection),
		})
	}

	if sel := state.Selected; sel != nil {
		if _, ok := snap.Node(*sel); ok {
			detail := &SelectionDetail{
				NoteID:    sel.NoteID,
				Label:     sel.Label,
				GroupName: names[sel.NoteID],
				Related:   []RelatedConcept{},
			}
			for _, e := range edges {
				switch *sel {
				case e.FromKey():
					detail.Related = append(detail.Related, RelatedConcept{Label: e.To, Explanation: e.Explanation, Outgoing: true})
				case e.ToKey():
					detail.Related = append(detail.Related, RelatedConcept{Label: e.From, Explanation: e.Explanation})
				}
			}
			frame.Selection = detail
		}
	}

	return frame
}
