package engine

import (
	"strings"
	"testing"
)

func TestBoardRender(t *testing.T) {
	board := &Board{
		Columns: 2,
		Rows:    2,
		Tiles: []Tile{
			{Position: Position{X: 0, Y: 0}, Symbol: 0, State: Revealed},
			{Position: Position{X: 1, Y: 0}, Symbol: 1, State: Hidden},
			{Position: Position{X: 0, Y: 1}, Symbol: 1, State: Matched},
			{Position: Position{X: 1, Y: 1}, Symbol: NoSymbol, State: Hidden},
		},
	}

	got := board.Render(false)
	want := "     0   1 \n" +
		" 0 [C1] -- \n" +
		" 1 (S1) -- \n"
	if got != want {
		t.Errorf("Render(false) =\n%q\nwant\n%q", got, want)
	}

	debug := board.Render(true)
	if !strings.Contains(debug, " S1 ") {
		t.Errorf("Render(true) should show hidden labels, got\n%s", debug)
	}
	if strings.Contains(debug, "??") {
		t.Errorf("Masked tiles must not render a label, got\n%s", debug)
	}
}
