package interaction

import "brain2-conceptmap/internal/domain/conceptmap"

// EdgeHighlighted reports whether c touches the selected or the hovered node.
func (c *Controller) EdgeHighlighted(conn conceptmap.Connection) bool {
	if s := c.state.Selected; s != nil && conn.Touches(*s) {
		return true
	}
	if h := c.state.Hovered; h != nil && conn.Touches(*h) {
		return true
	}
	return false
}

// EdgeDimmed reports whether c is pushed into the background by a selection
// it does not touch.
func (c *Controller) EdgeDimmed(conn conceptmap.Connection) bool {
	s := c.state.Selected
	return s != nil && !conn.Touches(*s)
}

// NodeDimmed reports whether key is dimmed: a selection exists, key is not
// the selection and no edge connects key to it.
func (c *Controller) NodeDimmed(key conceptmap.NodeKey, edges []conceptmap.Edge) bool {
	s := c.state.Selected
	if s == nil || *s == key {
		return false
	}
	for _, e := range edges {
		if e.Touches(*s) && e.Touches(key) {
			return false
		}
	}
	return true
}

// IsSelected reports whether key is the current selection.
func (c *Controller) IsSelected(key conceptmap.NodeKey) bool {
	return c.state.Selected != nil && *c.state.Selected == key
}

// IsHovered reports whether key is the hovered node.
func (c *Controller) IsHovered(key conceptmap.NodeKey) bool {
	return c.state.Hovered != nil && *c.state.Hovered == key
}
