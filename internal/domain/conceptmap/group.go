package conceptmap

// Palette is the cyclic cluster color table, assigned by derivation order.
var Palette = [...]string{
	"#6366F1", // indigo
	"#10B981", // emerald
	"#F59E0B", // amber
	"#EC4899", // pink
	"#0EA5E9", // sky
	"#8B5CF6", // violet
	"#EF4444", // red
	"#14B8A6", // teal
}

// Group is the cluster of concepts extracted from a single note.
//
// ID is the position of the group in the derivation that produced it and is
// only meaningful as a render key. NoteID is the stable identity.
type Group struct {
	ID       int      `json:"id"`
	NoteID   string   `json:"note_id"`
	Name     string   `json:"name"`
	Concepts []string `json:"concepts"`
	Color    string   `json:"color"`
	Bounds   *Bounds  `json:"bounds,omitempty"`
}

// ColorFor returns the palette color of the i-th derived group.
func ColorFor(i int) string {
	return Palette[i%len(Palette)]
}

// DeriveGroups partitions notes into concept groups. Notes without concepts
// are skipped, so group ids and colors follow the order of the notes that do
// have concepts.
func DeriveGroups(notes []Note) []Group {
	groups := make([]Group, 0, len(notes))
	for _, note := range notes {
		if !note.HasConcepts() {
			continue
		}
		pos := len(groups)
		name := note.Title
		if name == "" {
			name = note.Concepts[0]
		}
		concepts := make([]string, len(note.Concepts))
		copy(concepts, note.Concepts)
		groups = append(groups, Group{
			ID:       pos,
			NoteID:   note.ID,
			Name:     name,
			Concepts: concepts,
			Color:    ColorFor(pos),
		})
	}
	return groups
}

// FindGroup returns the group derived from noteID.
func FindGroup(groups []Group, noteID string) (Group, bool) {
	for _, g := range groups {
		if g.NoteID == noteID {
			return g, true
		}
	}
	return Group{}, false
}
