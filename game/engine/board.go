package engine

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// ConfigurationError reports board dimensions or settings that cannot produce a playable game
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// GenerateBoard builds the shuffled board for a level. The same level and
// seed always produce the same board.
func GenerateBoard(level Level, seed int64) (*Board, error) {
	if !level.Valid() {
		return nil, &ConfigurationError{Field: "level", Reason: fmt.Sprintf("unknown level %d", int(level))}
	}
	columns, rows := level.Dimensions()
	return GenerateGrid(columns, rows, seed)
}

// GenerateGrid builds a shuffled board of the given dimensions. The seed
// picks which symbols appear as well as where they lie; boards with more
// pairs than MaxIdentities use symbols 0..pairs-1 and repeat faces.
func GenerateGrid(columns, rows int, seed int64) (*Board, error) {
	if columns <= 0 || rows <= 0 {
		return nil, &ConfigurationError{
			Field:  "dimensions",
			Reason: fmt.Sprintf("grid must be at least 1x1, got %dx%d", columns, rows),
		}
	}
	total := columns * rows
	if total%2 != 0 {
		return nil, &ConfigurationError{
			Field:  "dimensions",
			Reason: fmt.Sprintf("grid %dx%d has an odd number of tiles", columns, rows),
		}
	}

	pairs := total / 2
	rng := rand.New(rand.NewSource(uint64(seed)))
	symbols := make([]Symbol, 0, total)
	for _, id := range pickIdentities(rng, pairs) {
		symbols = append(symbols, Symbol(id), Symbol(id))
	}

	rng.Shuffle(len(symbols), func(i, j int) {
		symbols[i], symbols[j] = symbols[j], symbols[i]
	})

	board := &Board{
		Columns: columns,
		Rows:    rows,
		Tiles:   make([]Tile, total),
	}
	for i, sym := range symbols {
		board.Tiles[i] = Tile{
			Position: Position{X: i % columns, Y: i / columns},
			Symbol:   sym,
			State:    Hidden,
		}
	}
	return board, nil
}

// pickIdentities draws pairs distinct symbol ids from the drawable faces
func pickIdentities(rng *rand.Rand, pairs int) []int {
	if pairs > MaxIdentities {
		ids := make([]int, pairs)
		for i := range ids {
			ids[i] = i
		}
		return ids
	}
	return rng.Perm(MaxIdentities)[:pairs]
}

// InBounds reports whether pos lies on the board
func (b *Board) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < b.Columns && pos.Y >= 0 && pos.Y < b.Rows
}

// TileAt returns the tile at pos, or nil when pos is off the board
func (b *Board) TileAt(pos Position) *Tile {
	if !b.InBounds(pos) {
		return nil
	}
	return &b.Tiles[pos.Y*b.Columns+pos.X]
}

// Pairs returns the number of symbol pairs on the board
func (b *Board) Pairs() int {
	return len(b.Tiles) / 2
}

// Clone returns a deep copy of the board
func (b *Board) Clone() Board {
	tiles := make([]Tile, len(b.Tiles))
	copy(tiles, b.Tiles)
	return Board{Columns: b.Columns, Rows: b.Rows, Tiles: tiles}
}

// Validate checks the pairing and coverage invariants of a board
func (b *Board) Validate() error {
	if len(b.Tiles) != b.Columns*b.Rows {
		return fmt.Errorf("board has %d tiles, want %d", len(b.Tiles), b.Columns*b.Rows)
	}
	counts := make(map[Symbol]int)
	seen := make(map[Position]bool, len(b.Tiles))
	for _, t := range b.Tiles {
		if !b.InBounds(t.Position) {
			return fmt.Errorf("tile %s is off the board", t.Position)
		}
		if seen[t.Position] {
			return fmt.Errorf("duplicate tile at %s", t.Position)
		}
		seen[t.Position] = true
		counts[t.Symbol]++
	}
	for sym, n := range counts {
		if n != 2 {
			return fmt.Errorf("symbol %d appears %d times", sym, n)
		}
	}
	return nil
}
