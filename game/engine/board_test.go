package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateBoard_Deterministic(t *testing.T) {
	for _, level := range Levels() {
		for _, seed := range []int64{0, 1, 42, 123456789, -7} {
			a, err := GenerateBoard(level, seed)
			require.NoError(t, err)
			b, err := GenerateBoard(level, seed)
			require.NoError(t, err)
			require.Equal(t, a, b, "level %s seed %d should generate identical boards", level, seed)
		}
	}
}

func TestGenerateBoard_WellFormed(t *testing.T) {
	for _, level := range Levels() {
		t.Run(level.String(), func(t *testing.T) {
			board, err := GenerateBoard(level, 42)
			require.NoError(t, err)
			require.NoError(t, board.Validate())

			columns, rows := level.Dimensions()
			require.Equal(t, columns, board.Columns)
			require.Equal(t, rows, board.Rows)
			require.Len(t, board.Tiles, columns*rows)

			// Row-major assignment covers every coordinate exactly once
			for i, tile := range board.Tiles {
				require.Equal(t, Position{X: i % columns, Y: i / columns}, tile.Position)
				require.Equal(t, Hidden, tile.State)
			}

			idx := PairIndex(board)
			require.Len(t, idx, level.Pairs())
			for sym, positions := range idx {
				require.Len(t, positions, 2, "symbol %d", sym)
				require.GreaterOrEqual(t, int(sym), 0)
				require.Less(t, int(sym), MaxIdentities)
			}
		})
	}
}

func TestGenerateBoard_SeedsDiffer(t *testing.T) {
	a, err := GenerateBoard(Hard, 1)
	require.NoError(t, err)
	b, err := GenerateBoard(Hard, 2)
	require.NoError(t, err)
	require.False(t, reflect.DeepEqual(a.Tiles, b.Tiles), "different seeds should shuffle differently")
}

func TestGenerateBoard_SeedPicksSymbols(t *testing.T) {
	symbolSet := func(seed int64) map[Symbol]bool {
		board, err := GenerateBoard(Easy, seed)
		require.NoError(t, err)
		set := make(map[Symbol]bool)
		for _, sym := range Symbols(board) {
			set[sym] = true
		}
		return set
	}

	a, b := symbolSet(1), symbolSet(2)
	require.Len(t, a, Easy.Pairs())
	require.NotEqual(t, a, b, "different seeds should draw different symbols")

	union := make(map[Symbol]bool)
	for seed := int64(0); seed < 20; seed++ {
		for sym := range symbolSet(seed) {
			require.GreaterOrEqual(t, int(sym), 0)
			require.Less(t, int(sym), MaxIdentities)
			union[sym] = true
		}
	}
	require.Greater(t, len(union), Easy.Pairs(), "symbols should come from the whole face set")
}

func TestGenerateGrid_MorePairsThanFaces(t *testing.T) {
	full, err := GenerateGrid(12, 12, 3)
	require.NoError(t, err)
	require.NoError(t, full.Validate())
	require.Len(t, Symbols(full), MaxIdentities)

	over, err := GenerateGrid(14, 12, 3)
	require.NoError(t, err)
	require.NoError(t, over.Validate())
	require.Len(t, PairIndex(over), 84)
	for sym := range PairIndex(over) {
		require.Less(t, int(sym), 84)
	}
}

func TestGenerateGrid_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name          string
		columns, rows int
	}{
		{"odd tile count", 3, 3},
		{"zero columns", 0, 4},
		{"negative rows", 4, -2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := GenerateGrid(test.columns, test.rows, 1)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			require.Equal(t, "dimensions", cfgErr.Field)
		})
	}

	_, err := GenerateBoard(Level(9), 1)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "level", cfgErr.Field)
}

func TestBoard_TileAt(t *testing.T) {
	board, err := GenerateBoard(Medium, 5)
	require.NoError(t, err)

	tile := board.TileAt(Position{X: 5, Y: 3})
	require.NotNil(t, tile)
	require.Equal(t, Position{X: 5, Y: 3}, tile.Position)

	for _, pos := range []Position{{-1, 0}, {0, -1}, {6, 0}, {0, 4}} {
		require.Nil(t, board.TileAt(pos), "position %s is off the board", pos)
		require.False(t, board.InBounds(pos))
	}
}

func TestBoard_Validate(t *testing.T) {
	board, err := GenerateBoard(Easy, 3)
	require.NoError(t, err)

	broken := board.Clone()
	broken.Tiles[0].Symbol = broken.Tiles[1].Symbol + 100
	require.Error(t, broken.Validate())

	dup := board.Clone()
	dup.Tiles[1].Position = dup.Tiles[0].Position
	require.Error(t, dup.Validate())

	short := board.Clone()
	short.Tiles = short.Tiles[:4]
	require.Error(t, short.Validate())
}
