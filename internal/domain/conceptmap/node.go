package conceptmap

import "fmt"

// NodeKey identifies a concept bubble across relayouts. Labels are only
// unique within one note, so the key carries both.
type NodeKey struct {
	NoteID string `json:"note_id"`
	Label  string `json:"label"`
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%s/%s", k.NoteID, k.Label)
}

// ConceptNode is one positioned bubble. Size is the bubble diameter.
type ConceptNode struct {
	ID       int     `json:"id"`
	Label    string  `json:"label"`
	Position Point   `json:"position"`
	Size     float64 `json:"size"`
	GroupID  int     `json:"group_id"`
	NoteID   string  `json:"note_id"`
}

// Key returns the stable identity of the node.
func (n ConceptNode) Key() NodeKey {
	return NodeKey{NoteID: n.NoteID, Label: n.Label}
}

// Connection is a relationship between two concepts of the same note.
type Connection struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Explanation string `json:"explanation"`
	NoteID      string `json:"note_id"`
}

// FromKey returns the key of the source endpoint.
func (c Connection) FromKey() NodeKey {
	return NodeKey{NoteID: c.NoteID, Label: c.From}
}

// ToKey returns the key of the target endpoint.
func (c Connection) ToKey() NodeKey {
	return NodeKey{NoteID: c.NoteID, Label: c.To}
}

// Touches reports whether key is one of the connection's endpoints.
func (c Connection) Touches(key NodeKey) bool {
	return c.FromKey() == key || c.ToKey() == key
}
