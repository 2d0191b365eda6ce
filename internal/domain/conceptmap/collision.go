package conceptmap

import "math"

// goldenAngle spreads coincident pairs in different directions.
const goldenAngle = 2.399963229728653

// resolveCollisions relaxes overlapping bubbles in place.
//
// Every iteration visits each unordered pair once; when two bubbles are closer
// than half their summed diameters plus margin, both are pushed apart along
// the line between their centers by half of the overlap. afterEach, when not
// nil, runs at the end of every iteration (the overview engine uses it for the
// containment clamp). The iteration count is fixed, so the cost is
// O(iterations·n²) and residual overlap is possible for crowded inputs.
func resolveCollisions(nodes []ConceptNode, iterations int, margin float64, afterEach func([]ConceptNode)) {
	for iter := 0; iter < iterations; iter++ {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				separate(&nodes[i], &nodes[j], margin, i*len(nodes)+j)
			}
		}
		if afterEach != nil {
			afterEach(nodes)
		}
	}
}

func separate(a, b *ConceptNode, margin float64, pair int) {
	dx := b.Position.X - a.Position.X
	dy := b.Position.Y - a.Position.Y
	dist := math.Hypot(dx, dy)
	minDist := (a.Size+b.Size)/2 + margin
	if dist >= minDist {
		return
	}

	var ux, uy float64
	if dist < 1e-9 {
		angle := float64(pair) * goldenAngle
		ux, uy = math.Cos(angle), math.Sin(angle)
	} else {
		ux, uy = dx/dist, dy/dist
	}

	push := (minDist - dist) / 2
	a.Position.X -= ux * push
	a.Position.Y -= uy * push
	b.Position.X += ux * push
	b.Position.Y += uy * push
}
