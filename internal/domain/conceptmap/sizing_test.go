package conceptmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBubbleSize(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		index    int
		expanded bool
		want     float64
	}{
		{"long word capped in overview", "Photosynthesis", 0, false, 90},
		{"long word capped in expanded", "Photosynthesis", 0, true, 120},
		{"variety term index 2", "Sunlight", 2, false, 80},
		{"variety term index 1", "Cell", 1, false, 72},
		{"variety term index 3", "Cell", 3, false, 64},
		{"variety wraps at index 4", "Cell", 4, false, 60},
		{"short label raised to overview minimum", "AI", 0, false, 55},
		{"short label in expanded", "AI", 0, true, 78},
		{"hyphen splits words", "state-of-the-art", 0, false, 63},
		{"whitespace splits words", "light dependent reactions", 0, true, 106},
		{"empty label", "", 0, false, 55},
		{"empty label expanded", "", 0, true, 70},
		{"counts runes not bytes", "Ökosystem", 0, false, 75},
		{"negative index stays deterministic", "Cell", -1, false, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BubbleSize(tt.label, tt.index, tt.expanded))
		})
	}
}

func TestBubbleSize_Bounds(t *testing.T) {
	labels := []string{"", "a", "Mitochondria", "Supercalifragilisticexpialidocious", "two words"}
	for i := 0; i < 16; i++ {
		for _, label := range labels {
			o := BubbleSize(label, i, false)
			assert.GreaterOrEqual(t, o, 55.0)
			assert.LessOrEqual(t, o, 90.0)

			e := BubbleSize(label, i, true)
			assert.GreaterOrEqual(t, e, 70.0)
			assert.LessOrEqual(t, e, 120.0)
		}
	}
}
