package engine

// Clone returns a deep copy of the game state
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Board = gs.Board.Clone()
	out.Revealed = append([]Position{}, gs.Revealed...)
	out.History = append([]MoveHistoryEntry{}, gs.History...)
	return &out
}

// Masked returns a copy of the state in which hidden tiles do not disclose
// their symbol, neither on the board nor through the move history.
func (gs *GameState) Masked() *GameState {
	out := gs.Clone()
	for i := range out.Board.Tiles {
		if out.Board.Tiles[i].State == Hidden {
			out.Board.Tiles[i].Symbol = NoSymbol
		}
	}
	out.History = MaskHistory(&out.Board, out.History)
	return out
}

// MaskHistory returns a copy of entries with the symbols of tiles that are
// hidden on board replaced by NoSymbol
func MaskHistory(board *Board, entries []MoveHistoryEntry) []MoveHistoryEntry {
	out := make([]MoveHistoryEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if t := board.TileAt(out[i].First); t == nil || t.State == Hidden {
			out[i].FirstSymbol = NoSymbol
		}
		if t := board.TileAt(out[i].Second); t == nil || t.State == Hidden {
			out[i].SecondSymbol = NoSymbol
		}
	}
	return out
}

// CountTileState counts the tiles in a given state
func CountTileState(board *Board, state TileState) int {
	count := 0
	for _, t := range board.Tiles {
		if t.State == state {
			count++
		}
	}
	return count
}

// FindSymbolPositions returns the positions holding the given symbol, in row-major order
func FindSymbolPositions(board *Board, sym Symbol) []Position {
	var out []Position
	for _, t := range board.Tiles {
		if t.Symbol == sym {
			out = append(out, t.Position)
		}
	}
	return out
}

// Symbols lists the distinct symbols on the board in row-major order of first appearance
func Symbols(board *Board) []Symbol {
	seen := make(map[Symbol]bool, board.Pairs())
	out := make([]Symbol, 0, board.Pairs())
	for _, t := range board.Tiles {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			out = append(out, t.Symbol)
		}
	}
	return out
}

// PairIndex maps every symbol on the board to its two positions
func PairIndex(board *Board) map[Symbol][]Position {
	idx := make(map[Symbol][]Position, board.Pairs())
	for _, t := range board.Tiles {
		idx[t.Symbol] = append(idx[t.Symbol], t.Position)
	}
	return idx
}

// FindMismatch returns two positions holding different hidden symbols, if any
func FindMismatch(board *Board) (Position, Position, bool) {
	var first *Tile
	for i := range board.Tiles {
		t := &board.Tiles[i]
		if t.State != Hidden {
			continue
		}
		if first == nil {
			first = t
			continue
		}
		if t.Symbol != first.Symbol {
			return first.Position, t.Position, true
		}
	}
	return Position{}, Position{}, false
}
