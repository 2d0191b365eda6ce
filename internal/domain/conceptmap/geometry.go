package conceptmap

import "math"

// Point is a position on the logical canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the containment circle of a cluster.
type Bounds struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Distance returns the euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// ring returns count points evenly spaced on a circle, the first one at start radians.
func ring(center Point, radius float64, count int, start float64) []Point {
	points := make([]Point, count)
	if count == 0 {
		return points
	}
	step := 2 * math.Pi / float64(count)
	for i := range points {
		angle := start + float64(i)*step
		points[i] = Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return points
}

// topAngle is the angle of twelve o'clock on a canvas whose y axis points down.
const topAngle = -math.Pi / 2

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
