package conceptmap

// LayoutConfig holds the canvas geometry and the tunables of the collision
// resolver. Iteration counts bound the running time of a relayout; they are
// not convergence criteria.
type LayoutConfig struct {
	Width              float64 `json:"width"`
	Height             float64 `json:"height"`
	OverviewIterations int     `json:"overview_iterations"`
	ExpandedIterations int     `json:"expanded_iterations"`
	OverviewMargin     float64 `json:"overview_margin"`
	ExpandedMargin     float64 `json:"expanded_margin"`
	ContainmentPadding float64 `json:"containment_padding"`
}

// Default layout tunables.
const (
	DefaultCanvasWidth        = 1200
	DefaultCanvasHeight       = 900
	DefaultOverviewIterations = 40
	DefaultExpandedIterations = 50
	DefaultOverviewMargin     = 8
	DefaultExpandedMargin     = 15
	DefaultContainmentPadding = 5
)

// DefaultLayoutConfig returns the reference canvas and resolver settings.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Width:              DefaultCanvasWidth,
		Height:             DefaultCanvasHeight,
		OverviewIterations: DefaultOverviewIterations,
		ExpandedIterations: DefaultExpandedIterations,
		OverviewMargin:     DefaultOverviewMargin,
		ExpandedMargin:     DefaultExpandedMargin,
		ContainmentPadding: DefaultContainmentPadding,
	}
}

// withDefaults fills zero canvas dimensions so a zero LayoutConfig still
// produces a usable layout.
func (c LayoutConfig) withDefaults() LayoutConfig {
	if c.Width <= 0 {
		c.Width = DefaultCanvasWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultCanvasHeight
	}
	if c.OverviewIterations < 0 {
		c.OverviewIterations = 0
	}
	if c.ExpandedIterations < 0 {
		c.ExpandedIterations = 0
	}
	return c
}

func (c LayoutConfig) center() Point {
	return Point{X: c.Width / 2, Y: c.Height / 2}
}

func (c LayoutConfig) shortSide() float64 {
	if c.Width < c.Height {
		return c.Width
	}
	return c.Height
}
