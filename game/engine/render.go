package engine

import (
	"fmt"
	"strings"
)

// Render draws the board as text, one row per line with column and row
// numbers. Face-up tiles are bracketed ([C1]), matched tiles parenthesised
// ((C1)) and hidden tiles drawn as " -- ". With showHidden, hidden tiles
// show their label instead, which is only useful for debugging a seed.
func (b *Board) Render(showHidden bool) string {
	var sb strings.Builder

	sb.WriteString("   ")
	for x := 0; x < b.Columns; x++ {
		fmt.Fprintf(&sb, " %2d ", x)
	}
	sb.WriteString("\n")

	for y := 0; y < b.Rows; y++ {
		fmt.Fprintf(&sb, "%2d ", y)
		for x := 0; x < b.Columns; x++ {
			sb.WriteString(renderTile(b.TileAt(Position{X: x, Y: y}), showHidden))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderTile(t *Tile, showHidden bool) string {
	switch {
	case t == nil:
		return "    "
	case t.State == Revealed:
		return "[" + t.Symbol.Label() + "]"
	case t.State == Matched:
		return "(" + t.Symbol.Label() + ")"
	case showHidden && t.Symbol != NoSymbol:
		return " " + t.Symbol.Label() + " "
	default:
		return " -- "
	}
}
