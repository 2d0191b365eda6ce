package conceptmap

import "math"

const (
	expandedSingleRingMax = 8
	expandedRingFactor    = 0.3
	expandedInnerFactor   = 0.18
	expandedOuterFactor   = 0.35
	expandedInnerShare    = 0.4
)

// LayoutExpanded spreads the concepts of a single group across the whole
// canvas. Nodes are not contained by any cluster circle and may drift toward
// the canvas edges when crowded.
func LayoutExpanded(g Group, cfg LayoutConfig) []ConceptNode {
	cfg = cfg.withDefaults()
	slots := expandedSlots(cfg, len(g.Concepts))

	nodes := make([]ConceptNode, len(slots))
	for i, p := range slots {
		label := g.Concepts[i]
		nodes[i] = ConceptNode{
			ID:       i,
			Label:    label,
			Position: p,
			Size:     BubbleSize(label, i, true),
			GroupID:  g.ID,
			NoteID:   g.NoteID,
		}
	}
	resolveCollisions(nodes, cfg.ExpandedIterations, cfg.ExpandedMargin, nil)
	return nodes
}

func expandedSlots(cfg LayoutConfig, count int) []Point {
	center := cfg.center()
	side := cfg.shortSide()
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return []Point{center}
	case count <= expandedSingleRingMax:
		return ring(center, side*expandedRingFactor, count, topAngle)
	}
	inner := int(math.Ceil(float64(count) * expandedInnerShare))
	slots := ring(center, side*expandedInnerFactor, inner, topAngle)
	return append(slots, ring(center, side*expandedOuterFactor, count-inner, topAngle)...)
}
