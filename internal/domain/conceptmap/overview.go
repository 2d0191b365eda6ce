package conceptmap

import "math"

const (
	clusterBaseRadius    = 60
	clusterRadiusPerRoot = 30
	clusterMinRadius     = 80
	clusterCellInset     = 50

	singleRingFactor = 0.6
	innerRingFactor  = 0.4
	outerRingFactor  = 0.75
	singleRingMax    = 6
)

// OverviewLayout is the result of laying out every group at once.
// Groups carry their computed Bounds.
type OverviewLayout struct {
	Groups []Group
	Nodes  []ConceptNode
}

// LayoutOverview places all groups on a grid and their concepts inside each
// group's bounding circle, then resolves collisions across every node while
// keeping each node inside its own cluster.
func LayoutOverview(groups []Group, cfg LayoutConfig) OverviewLayout {
	cfg = cfg.withDefaults()
	if len(groups) == 0 {
		return OverviewLayout{Groups: []Group{}, Nodes: []ConceptNode{}}
	}

	placed := make([]Group, len(groups))
	bounds := gridBounds(groups, cfg)
	nodes := make([]ConceptNode, 0)
	owners := make([]Bounds, 0)

	for gi, g := range groups {
		b := bounds[gi]
		g.Bounds = &b
		placed[gi] = g

		for ci, p := range clusterSlots(b, len(g.Concepts)) {
			label := g.Concepts[ci]
			nodes = append(nodes, ConceptNode{
				ID:       len(nodes),
				Label:    label,
				Position: p,
				Size:     BubbleSize(label, ci, false),
				GroupID:  g.ID,
				NoteID:   g.NoteID,
			})
			owners = append(owners, b)
		}
	}

	contain := func(ns []ConceptNode) {
		for i := range ns {
			ns[i].Position = containWithin(ns[i].Position, owners[i], ns[i].Size/2+cfg.ContainmentPadding)
		}
	}
	resolveCollisions(nodes, cfg.OverviewIterations, cfg.OverviewMargin, contain)

	return OverviewLayout{Groups: placed, Nodes: nodes}
}

// gridColumns returns the number of grid columns used for n groups.
func gridColumns(n int) int {
	switch {
	case n <= 1:
		return 1
	case n <= 4:
		return 2
	default:
		return 3
	}
}

func gridBounds(groups []Group, cfg LayoutConfig) []Bounds {
	cols := gridColumns(len(groups))
	rows := int(math.Ceil(float64(len(groups)) / float64(cols)))
	cellW := cfg.Width / float64(cols)
	cellH := cfg.Height / float64(rows)
	maxRadius := math.Min(cellW, cellH)/2 - clusterCellInset

	out := make([]Bounds, len(groups))
	for i, g := range groups {
		col, row := i%cols, i/cols
		out[i] = Bounds{
			Center: Point{
				X: (float64(col) + 0.5) * cellW,
				Y: (float64(row) + 0.5) * cellH,
			},
			Radius: clusterRadius(len(g.Concepts), maxRadius),
		}
	}
	return out
}

// clusterRadius grows with the square root of the concept count, capped by
// the grid cell and never below clusterMinRadius.
func clusterRadius(concepts int, maxRadius float64) float64 {
	r := clusterBaseRadius + math.Sqrt(float64(concepts))*clusterRadiusPerRoot
	return math.Max(clusterMinRadius, math.Min(maxRadius, r))
}

// clusterSlots returns the initial positions of count nodes inside b.
func clusterSlots(b Bounds, count int) []Point {
	switch {
	case count <= 0:
		return nil
	case count == 1:
		return []Point{b.Center}
	case count <= singleRingMax:
		return ring(b.Center, b.Radius*singleRingFactor, count, topAngle)
	}
	inner := count / 2
	outer := count - inner
	slots := ring(b.Center, b.Radius*innerRingFactor, inner, topAngle)
	return append(slots, ring(b.Center, b.Radius*outerRingFactor, outer, topAngle+math.Pi/float64(outer))...)
}

// containWithin pulls p radially toward b's center so that it lies no farther
// than b.Radius-inset from it.
func containWithin(p Point, b Bounds, inset float64) Point {
	limit := math.Max(0, b.Radius-inset)
	dx, dy := p.X-b.Center.X, p.Y-b.Center.Y
	dist := math.Hypot(dx, dy)
	if dist <= limit || dist == 0 {
		return p
	}
	scale := limit / dist
	return Point{X: b.Center.X + dx*scale, Y: b.Center.Y + dy*scale}
}
