package conceptmap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	overviewBaseSize = 48
	overviewPerRune  = 3
	overviewMinSize  = 55
	overviewMaxSize  = 90

	expandedBaseSize = 70
	expandedPerRune  = 4
	expandedMinSize  = 70
	expandedMaxSize  = 120
)

// BubbleSize derives the diameter of a concept bubble from its label.
//
// The size depends on the length of the longest word only, never on rendered
// glyph widths, so the result is identical on every platform. index adds a
// small deterministic variation so labels of equal length don't produce
// identical circles.
func BubbleSize(label string, index int, expanded bool) float64 {
	longest := longestWord(label)
	variety := float64(((index*7)%4+4)%4) * 4

	if expanded {
		size := float64(expandedBaseSize+expandedPerRune*longest) + variety
		return clamp(size, expandedMinSize, expandedMaxSize)
	}
	size := float64(overviewBaseSize+overviewPerRune*longest) + variety
	return clamp(size, overviewMinSize, overviewMaxSize)
}

func longestWord(label string) int {
	words := strings.FieldsFunc(label, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	longest := 0
	for _, w := range words {
		if n := utf8.RuneCountInString(w); n > longest {
			longest = n
		}
	}
	return longest
}
