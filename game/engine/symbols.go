package engine

import "fmt"

// Glyph names the shape drawn for a symbol
type Glyph string

const (
	Circle   Glyph = "circle"
	Square   Glyph = "square"
	Diamond  Glyph = "diamond"
	Triangle Glyph = "triangle"
	Star     Glyph = "star"
	Plus     Glyph = "plus"
	Cross    Glyph = "cross"
	Hexagon  Glyph = "hexagon"
)

var glyphs = []Glyph{Circle, Square, Diamond, Triangle, Star, Plus, Cross, Hexagon}

var glyphColors = []string{
	"#f43f5e", // rose
	"#f97316", // orange
	"#eab308", // yellow
	"#84cc16", // lime
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#ec4899", // pink
}

// Identity is the visual face of a symbol
type Identity struct {
	Glyph Glyph  `json:"glyph"`
	Color string `json:"color"`
}

// MaxIdentities is the number of distinct faces renderers can draw
var MaxIdentities = len(glyphs) * len(glyphColors)

// IdentityOf maps a symbol to its glyph and colour. Consecutive symbols
// differ in both shape and colour.
func IdentityOf(sym Symbol) Identity {
	if sym < 0 {
		return Identity{}
	}
	n := int(sym) % MaxIdentities
	return Identity{
		Glyph: glyphs[n%len(glyphs)],
		Color: glyphColors[(n/len(glyphs)+n%len(glyphs))%len(glyphColors)],
	}
}

// Label returns a short two-character label for text renderers, e.g. "C1"
func (s Symbol) Label() string {
	if s < 0 {
		return "??"
	}
	id := IdentityOf(s)
	return fmt.Sprintf("%c%d", glyphInitial(id.Glyph), int(s)/len(glyphs)+1)
}

func glyphInitial(g Glyph) rune {
	switch g {
	case Circle:
		return 'C'
	case Square:
		return 'S'
	case Diamond:
		return 'D'
	case Triangle:
		return 'T'
	case Star:
		return '*'
	case Plus:
		return '+'
	case Cross:
		return 'X'
	case Hexagon:
		return 'H'
	}
	return '?'
}
