// Package play holds the display-independent half of the desktop client:
// the board layout and the backends that own or proxy a game.
package play

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/wricardo/memory-puzzle/game/engine"
)

// Backend is the game a window is showing. Local games run the engine in
// process; remote games proxy a server session.
type Backend interface {
	State() *engine.GameState
	Settings() *engine.Settings
	// Reveal hides a pending mismatch first, so clicking on a new tile
	// never has to wait for the timer.
	Reveal(pos engine.Position) (engine.RevealResult, error)
	ResolveMismatch() (bool, error)
	NewGame(level engine.Level) error
	// Update is called once per frame
	Update() error
	Close() error
}

// Layout maps board positions to pixels. The HUD sits above the board.
type Layout struct {
	settings *engine.Settings
	columns  int
	rows     int
}

// NewLayout creates the layout of a level under the given settings
func NewLayout(settings *engine.Settings, level engine.Level) Layout {
	cols, rows := level.Dimensions()
	return Layout{settings: settings, columns: cols, rows: rows}
}

// Size returns the window size in pixels
func (l Layout) Size() (width, height int) {
	s := l.settings
	width = s.Padding*2 + l.columns*s.TileSize + (l.columns-1)*s.TileGap
	height = s.HUDHeight + s.Padding*2 + l.rows*s.TileSize + (l.rows-1)*s.TileGap
	return width, height
}

// Board returns the rectangle covered by the board including its padding
func (l Layout) Board() image.Rectangle {
	w, h := l.Size()
	return image.Rect(0, l.settings.HUDHeight, w, h)
}

// TileRect returns the pixel rectangle of the tile at pos
func (l Layout) TileRect(pos engine.Position) image.Rectangle {
	s := l.settings
	step := s.TileSize + s.TileGap
	x := s.Padding + pos.X*step
	y := s.HUDHeight + s.Padding + pos.Y*step
	return image.Rect(x, y, x+s.TileSize, y+s.TileSize)
}

// TileAt returns the tile under the pixel (x, y). Gaps and padding hit nothing.
func (l Layout) TileAt(x, y int) (engine.Position, bool) {
	s := l.settings
	step := s.TileSize + s.TileGap
	rx := x - s.Padding
	ry := y - s.HUDHeight - s.Padding
	if rx < 0 || ry < 0 {
		return engine.Position{}, false
	}
	if rx%step >= s.TileSize || ry%step >= s.TileSize {
		return engine.Position{}, false
	}
	pos := engine.Position{X: rx / step, Y: ry / step}
	if pos.X >= l.columns || pos.Y >= l.rows {
		return engine.Position{}, false
	}
	return pos, true
}

// ParseColor converts a "#rrggbb" palette entry
func ParseColor(hex string) (color.RGBA, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MustColor is ParseColor for palettes that already passed validation
func MustColor(hex string) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return color.RGBA{R: 0xff, A: 0xff}
	}
	return c
}
