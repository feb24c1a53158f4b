// Package validate checks settings profile files before they are served. It
// checks:
//   - JSON or YAML syntax
//   - the field rules enforced by engine.ValidateSettings
//   - that revealed, matched and hidden tiles use distinguishable colours
//   - that every level fits on a canvas of sensible size
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/memory-puzzle/game/engine"
)

// MaxCanvasSide is the largest width or height a rendered board may need
const MaxCanvasSide = 4096

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// File loads and validates a single settings profile
func File(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	ext := filepath.Ext(path)
	settings, err := engine.DecodeSettings(ext, data)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(strings.TrimPrefix(ext, ".")), err)
		return result
	}
	if settings.Name == "" {
		settings.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}

	if err := engine.ValidateSettings(settings); err != nil {
		result.fail("%v", err)
		return result
	}

	p := settings.Palette
	distinct := map[string]string{}
	for role, color := range map[string]string{"tile": p.Tile, "revealed": p.Revealed, "matched": p.Matched} {
		key := strings.ToLower(color)
		if other, ok := distinct[key]; ok {
			roles := []string{other, role}
			sort.Strings(roles)
			result.fail("Palette colours for %s and %s are both %s", roles[0], roles[1], color)
			continue
		}
		distinct[key] = role
	}

	for _, level := range engine.Levels() {
		w, h := settings.CanvasSize(level)
		if w > MaxCanvasSide || h > MaxCanvasSide {
			result.fail("Canvas for %s is %dx%d, larger than %d", level, w, h, MaxCanvasSide)
			continue
		}
		result.info("Canvas %s: %dx%d", level, w, h)
	}

	if settings.AutoResolve {
		result.info("Mismatches hide after %s", settings.MismatchDelay())
	} else {
		result.info("Mismatches hide on request")
	}
	return result
}

// Dir validates every .json, .yaml and .yml file in dir, sorted by name
func Dir(dir string) ([]ValidationResult, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

// Report prints a concise report and returns whether every result was valid
func Report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "No settings profiles found")
	case allValid:
		fmt.Fprintln(w, "✅ All settings profiles are valid!")
	default:
		fmt.Fprintln(w, "❌ Some settings profiles have errors")
	}
	return allValid
}
