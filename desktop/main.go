package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/memory-puzzle/desktop/internal/play"
	"github.com/wricardo/memory-puzzle/game/config"
	"github.com/wricardo/memory-puzzle/game/engine"
)

const noticeDuration = 2 * time.Second

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Game is the ebiten window showing one board
type Game struct {
	backend play.Backend
	title   string

	level  engine.Level
	layout play.Layout
	hover  *engine.Position

	notice   string
	noticeAt time.Time
}

// NewGame creates a window for the backend
func NewGame(backend play.Backend, title string) *Game {
	g := &Game{backend: backend, title: title}
	g.relayout(backend.State().Level)
	return g
}

func (g *Game) relayout(level engine.Level) {
	g.level = level
	g.layout = play.NewLayout(g.backend.Settings(), level)
	w, h := g.layout.Size()
	ebiten.SetWindowSize(w, h)
}

func (g *Game) notify(format string, args ...interface{}) {
	g.notice = fmt.Sprintf(format, args...)
	g.noticeAt = time.Now()
}

// Update handles input and advances the backend
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if err := g.backend.Update(); err != nil {
		g.notify("%v", err)
	}

	levelKeys := map[ebiten.Key]engine.Level{
		ebiten.Key1: engine.Easy,
		ebiten.Key2: engine.Medium,
		ebiten.Key3: engine.Hard,
	}
	for key, level := range levelKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.newGame(level)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.newGame(g.level)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if _, err := g.backend.ResolveMismatch(); err != nil {
			g.notify("%v", err)
		}
	}

	x, y := ebiten.CursorPosition()
	g.hover = nil
	if pos, ok := g.layout.TileAt(x, y); ok {
		g.hover = &pos
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.reveal(pos)
		}
	}

	// Remote sessions can change level from another client
	if level := g.backend.State().Level; level != g.level {
		g.relayout(level)
	}
	return nil
}

func (g *Game) newGame(level engine.Level) {
	if err := g.backend.NewGame(level); err != nil {
		g.notify("%v", err)
		return
	}
	g.relayout(level)
}

func (g *Game) reveal(pos engine.Position) {
	res, err := g.backend.Reveal(pos)
	if err != nil {
		g.notify("%v", err)
		return
	}
	if res.Outcome == engine.OutcomeRejected && res.Reason != engine.RejectGameComplete {
		log.Debug().Stringer("pos", pos).Str("reason", string(res.Reason)).Msg("reveal rejected")
	}
}

// Draw renders the HUD and board
func (g *Game) Draw(screen *ebiten.Image) {
	settings := g.backend.Settings()
	palette := settings.Palette
	state := g.backend.State()

	screen.Fill(play.MustColor(palette.Background))
	board := g.layout.Board()
	vector.DrawFilledRect(screen, float32(board.Min.X), float32(board.Min.Y),
		float32(board.Dx()), float32(board.Dy()), play.MustColor(palette.Canvas), false)

	for _, tile := range state.Board.Tiles {
		g.drawTile(screen, tile, palette)
	}

	g.drawHUD(screen, state)
}

func (g *Game) drawTile(screen *ebiten.Image, tile engine.Tile, palette engine.Palette) {
	r := g.layout.TileRect(tile.Position)
	x, y := float32(r.Min.X), float32(r.Min.Y)
	size := float32(r.Dx())

	var bg color.RGBA
	switch tile.State {
	case engine.Matched:
		bg = play.MustColor(palette.Matched)
	case engine.Revealed:
		bg = play.MustColor(palette.Revealed)
	default:
		bg = play.MustColor(palette.Tile)
		if g.hover != nil && *g.hover == tile.Position {
			bg = play.MustColor(palette.Hover)
		}
	}
	vector.DrawFilledRect(screen, x, y, size, size, bg, false)

	if tile.State == engine.Hidden || tile.Symbol == engine.NoSymbol {
		return
	}
	id := engine.IdentityOf(tile.Symbol)
	drawGlyph(screen, id.Glyph, x+size/2, y+size/2, size*0.32, play.MustColor(id.Color))
}

func (g *Game) drawHUD(screen *ebiten.Image, state *engine.GameState) {
	elapsed := state.Elapsed.Truncate(time.Second)
	line := fmt.Sprintf("%s  %s  pairs %d/%d  moves %d  %s",
		g.title, state.Level, state.MatchedPairs, state.TotalPairs, state.Moves, elapsed)
	ebitenutil.DebugPrintAt(screen, line, 8, 6)

	msg := state.Message
	if g.notice != "" && time.Since(g.noticeAt) < noticeDuration {
		msg = g.notice
	}
	ebitenutil.DebugPrintAt(screen, msg, 8, 22)
	ebitenutil.DebugPrintAt(screen, "click: reveal  R: hide  N: new  1-3: level  Q: quit", 8, 38)
}

// Layout keeps the logical screen the size of the board
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.layout.Size()
}

func drawGlyph(dst *ebiten.Image, glyph engine.Glyph, cx, cy, r float32, clr color.RGBA) {
	switch glyph {
	case engine.Circle:
		vector.DrawFilledCircle(dst, cx, cy, r, clr, true)
	case engine.Square:
		s := r * 1.6
		vector.DrawFilledRect(dst, cx-s/2, cy-s/2, s, s, clr, true)
	case engine.Diamond:
		fillPolygon(dst, cx, cy, regularPolygon(cx, cy, r, 4, 0), clr)
	case engine.Triangle:
		fillPolygon(dst, cx, cy, regularPolygon(cx, cy, r, 3, 0), clr)
	case engine.Hexagon:
		fillPolygon(dst, cx, cy, regularPolygon(cx, cy, r, 6, math.Pi/6), clr)
	case engine.Star:
		fillPolygon(dst, cx, cy, starPolygon(cx, cy, r, r*0.45, 5), clr)
	case engine.Plus:
		w := r * 0.5
		vector.DrawFilledRect(dst, cx-r, cy-w/2, 2*r, w, clr, true)
		vector.DrawFilledRect(dst, cx-w/2, cy-r, w, 2*r, clr, true)
	case engine.Cross:
		d := r * 0.75
		vector.StrokeLine(dst, cx-d, cy-d, cx+d, cy+d, r*0.45, clr, true)
		vector.StrokeLine(dst, cx-d, cy+d, cx+d, cy-d, r*0.45, clr, true)
	}
}

// regularPolygon returns n points on a circle, the first one at the top
// turned by offset radians
func regularPolygon(cx, cy, r float32, n int, offset float64) [][2]float32 {
	pts := make([][2]float32, n)
	for i := range pts {
		a := offset - math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		pts[i] = [2]float32{cx + r*float32(math.Cos(a)), cy + r*float32(math.Sin(a))}
	}
	return pts
}

func starPolygon(cx, cy, outer, inner float32, points int) [][2]float32 {
	pts := make([][2]float32, 2*points)
	for i := range pts {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + math.Pi*float64(i)/float64(points)
		pts[i] = [2]float32{cx + r*float32(math.Cos(a)), cy + r*float32(math.Sin(a))}
	}
	return pts
}

// fillPolygon fills a polygon that is star-shaped around (cx, cy) as a
// triangle fan from that centre
func fillPolygon(dst *ebiten.Image, cx, cy float32, pts [][2]float32, clr color.RGBA) {
	r := float32(clr.R) / 0xff
	g := float32(clr.G) / 0xff
	b := float32(clr.B) / 0xff
	a := float32(clr.A) / 0xff
	vertex := func(x, y float32) ebiten.Vertex {
		return ebiten.Vertex{DstX: x, DstY: y, SrcX: 1, SrcY: 1, ColorR: r, ColorG: g, ColorB: b, ColorA: a}
	}

	vs := make([]ebiten.Vertex, 0, len(pts)+1)
	vs = append(vs, vertex(cx, cy))
	for _, p := range pts {
		vs = append(vs, vertex(p[0], p[1]))
	}
	is := make([]uint16, 0, 3*len(pts))
	for i := 1; i <= len(pts); i++ {
		next := i%len(pts) + 1
		is = append(is, 0, uint16(i), uint16(next))
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func newBackend(ctx context.Context, cmd *cli.Command) (play.Backend, string, error) {
	if id := cmd.String("session"); id != "" {
		remote, err := play.Dial(ctx, cmd.String("url"), id)
		if err != nil {
			return nil, "", err
		}
		return remote, "session " + id, nil
	}

	configs, err := config.NewManager(cmd.String("settings-dir"))
	if err != nil {
		return nil, "", err
	}
	settings := configs.GetDefault()
	if profile := cmd.String("profile"); profile != "" {
		if settings, err = configs.LoadSettings(profile); err != nil {
			return nil, "", err
		}
	}

	level := settings.Level()
	if name := cmd.String("level"); name != "" {
		if level, err = engine.ParseLevel(name); err != nil {
			return nil, "", err
		}
	}
	seed := engine.RandomSeed()
	if cmd.IsSet("seed") {
		seed = cmd.Int64("seed")
	}

	local, err := play.NewLocal(settings, level, seed)
	if err != nil {
		return nil, "", err
	}
	return local, "local", nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cmd := &cli.Command{
		Name:  "memory-puzzle-desktop",
		Usage: "Play Memory Puzzle in a window, locally or attached to a server session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "session", Usage: "Attach to this server session instead of playing locally"},
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL for --session"},
			&cli.StringFlag{Name: "settings-dir", Usage: "Directory of settings profiles for local games"},
			&cli.StringFlag{Name: "profile", Usage: "Settings profile for local games"},
			&cli.StringFlag{Name: "level", Usage: "Level for local games (easy, medium, hard)"},
			&cli.Int64Flag{Name: "seed", Usage: "Seed for the first local game"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			backend, title, err := newBackend(ctx, cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			ebiten.SetWindowTitle("Memory Puzzle - " + title)
			return ebiten.RunGame(NewGame(backend, title))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("desktop client failed")
	}
}
