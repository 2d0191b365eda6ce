package conceptmap

// ViewMode selects which layout engine produces the snapshot.
type ViewMode string

const (
	ModeOverview ViewMode = "overview"
	ModeExpanded ViewMode = "expanded"
)

// Snapshot is a complete, immutable layout for one note set and view mode.
// In overview mode Groups carry their Bounds; in expanded mode Nodes hold only
// the expanded group's concepts.
type Snapshot struct {
	Mode           ViewMode      `json:"mode"`
	ExpandedNoteID string        `json:"expanded_note_id,omitempty"`
	Groups         []Group       `json:"groups"`
	Nodes          []ConceptNode `json:"nodes"`
}

// Empty reports whether there is nothing to draw.
func (s Snapshot) Empty() bool {
	return len(s.Nodes) == 0
}

// Node returns the node with the given key.
func (s Snapshot) Node(key NodeKey) (ConceptNode, bool) {
	for _, n := range s.Nodes {
		if n.Key() == key {
			return n, true
		}
	}
	return ConceptNode{}, false
}

// Compute runs grouping, sizing, layout and collision resolution for notes.
//
// An expanded mode whose note no longer has a group degrades to an empty
// snapshot rather than an error; the caller decides whether to fall back to
// the overview.
func Compute(notes []Note, mode ViewMode, expandedNoteID string, cfg LayoutConfig) Snapshot {
	groups := DeriveGroups(notes)

	if mode == ModeExpanded {
		snap := Snapshot{
			Mode:           ModeExpanded,
			ExpandedNoteID: expandedNoteID,
			Groups:         groups,
			Nodes:          []ConceptNode{},
		}
		if g, ok := FindGroup(groups, expandedNoteID); ok {
			snap.Nodes = LayoutExpanded(g, cfg)
		}
		return snap
	}

	overview := LayoutOverview(groups, cfg)
	return Snapshot{
		Mode:   ModeOverview,
		Groups: overview.Groups,
		Nodes:  overview.Nodes,
	}
}
