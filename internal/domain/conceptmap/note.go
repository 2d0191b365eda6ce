// Package conceptmap contains the concept-map domain: grouping notes into
// concept clusters, sizing concept bubbles and laying them out on a canvas.
//
// Everything in this package is a pure function of its inputs. Layouts are
// recomputed wholesale whenever the note snapshot or the view mode changes and
// are never mutated after they are returned.
package conceptmap

// Note is a captured note as provided by the note source. The concept map
// only reads notes; it never writes them back.
type Note struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Concepts []string `json:"concepts" yaml:"concepts"`
}

// HasConcepts reports whether the note contributes a cluster to the map.
func (n Note) HasConcepts() bool {
	return len(n.Concepts) > 0
}
