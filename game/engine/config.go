package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Palette holds the colours a renderer uses for the board
type Palette struct {
	Background string `json:"background" yaml:"background"`
	Canvas     string `json:"canvas" yaml:"canvas"`
	Tile       string `json:"tile" yaml:"tile"`
	Hover      string `json:"hover" yaml:"hover"`
	Revealed   string `json:"revealed" yaml:"revealed"`
	Matched    string `json:"matched" yaml:"matched"`
	HUD        string `json:"hud" yaml:"hud"`
}

// Settings is the presentation and timing configuration consumed by views.
// Only MismatchDelayMS and AutoResolve influence game flow, and only through
// the caller that schedules ResolveMismatch.
type Settings struct {
	Name            string  `json:"name" yaml:"name"`
	Description     string  `json:"description" yaml:"description"`
	TileSize        int     `json:"tile_size" yaml:"tile_size"`
	TileGap         int     `json:"tile_gap" yaml:"tile_gap"`
	Padding         int     `json:"padding" yaml:"padding"`
	HUDHeight       int     `json:"hud_height" yaml:"hud_height"`
	MismatchDelayMS int     `json:"mismatch_delay_ms" yaml:"mismatch_delay_ms"`
	TickIntervalMS  int     `json:"tick_interval_ms" yaml:"tick_interval_ms"`
	AutoResolve     bool    `json:"auto_resolve" yaml:"auto_resolve"`
	DefaultLevel    string  `json:"default_level" yaml:"default_level"`
	Palette         Palette `json:"palette" yaml:"palette"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultSettings returns the built-in settings profile
func DefaultSettings() *Settings {
	return &Settings{
		Name:            "default",
		Description:     "Built-in settings",
		TileSize:        80,
		TileGap:         10,
		Padding:         20,
		HUDHeight:       60,
		MismatchDelayMS: 650,
		TickIntervalMS:  250,
		AutoResolve:     true,
		DefaultLevel:    Easy.String(),
		Palette: Palette{
			Background: "#0f172a",
			Canvas:     "#111827",
			Tile:       "#1f2937",
			Hover:      "#334155",
			Revealed:   "#0ea5e9",
			Matched:    "#22c55e",
			HUD:        "#e5e7eb",
		},
	}
}

// MismatchDelay returns the delay before a mismatched pair is hidden again
func (s *Settings) MismatchDelay() time.Duration {
	return time.Duration(s.MismatchDelayMS) * time.Millisecond
}

// TickInterval returns how often views advance the game clock
func (s *Settings) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMS) * time.Millisecond
}

// Level returns the parsed default level, falling back to Easy
func (s *Settings) Level() Level {
	if s.DefaultLevel == "" {
		return Easy
	}
	l, err := ParseLevel(s.DefaultLevel)
	if err != nil {
		return Easy
	}
	return l
}

// CanvasSize returns the pixel size of a board for the given level
func (s *Settings) CanvasSize(level Level) (width, height int) {
	cols, rows := level.Dimensions()
	width = s.Padding*2 + cols*s.TileSize + (cols-1)*s.TileGap
	height = s.HUDHeight + s.Padding*2 + rows*s.TileSize + (rows-1)*s.TileGap
	return width, height
}

// ValidateSettings validates a settings profile for correctness
func ValidateSettings(s *Settings) error {
	if s == nil {
		return &ConfigurationError{Field: "settings", Reason: "settings cannot be nil"}
	}
	if s.Name == "" {
		return &ConfigurationError{Field: "name", Reason: "name is required"}
	}
	if s.TileSize <= 0 {
		return &ConfigurationError{Field: "tile_size", Reason: fmt.Sprintf("must be positive, got %d", s.TileSize)}
	}
	if s.TileGap < 0 || s.Padding < 0 || s.HUDHeight < 0 {
		return &ConfigurationError{Field: "layout", Reason: "tile_gap, padding and hud_height must not be negative"}
	}

	delay := s.MismatchDelay()
	if delay < MinMismatchDelay || delay > MaxMismatchDelay {
		return &ConfigurationError{
			Field:  "mismatch_delay_ms",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinMismatchDelay, MaxMismatchDelay.Milliseconds(), s.MismatchDelayMS),
		}
	}
	if s.TickIntervalMS <= 0 {
		return &ConfigurationError{Field: "tick_interval_ms", Reason: fmt.Sprintf("must be positive, got %d", s.TickIntervalMS)}
	}

	if s.DefaultLevel != "" {
		if _, err := ParseLevel(s.DefaultLevel); err != nil {
			return &ConfigurationError{Field: "default_level", Reason: err.Error()}
		}
	}

	colors := map[string]string{
		"palette.background": s.Palette.Background,
		"palette.canvas":     s.Palette.Canvas,
		"palette.tile":       s.Palette.Tile,
		"palette.hover":      s.Palette.Hover,
		"palette.revealed":   s.Palette.Revealed,
		"palette.matched":    s.Palette.Matched,
		"palette.hud":        s.Palette.HUD,
	}
	for field, value := range colors {
		if !hexColor.MatchString(value) {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("%q is not a #rrggbb colour", value)}
		}
	}

	return nil
}

// LoadSettingsFile loads and validates a settings profile from a JSON or YAML
// file. Fields missing from the file keep their default values.
func LoadSettingsFile(filename string) (*Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	settings, err := DecodeSettings(filepath.Ext(filename), data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file '%s': %w", filename, err)
	}
	if settings.Name == "" {
		settings.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid settings '%s': %w", filename, err)
	}
	return settings, nil
}

// DecodeSettings decodes settings data; ext selects the format (".json", ".yaml" or ".yml")
func DecodeSettings(ext string, data []byte) (*Settings, error) {
	settings := DefaultSettings()
	settings.Name = ""
	settings.Description = ""

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, err
		}
	case ".json", "":
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported settings format %q", ext)
	}
	return settings, nil
}
