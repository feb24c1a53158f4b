// Package config provides settings profile management for the Memory Puzzle.
//
// The config package handles:
//   - Loading settings profiles from JSON or YAML files
//   - Validation through engine.ValidateSettings
//   - Default profile management with a built-in fallback
//   - Profile discovery and listing
//
// Profile Format:
//
// Each file in the settings directory is one profile, named after the file
// without its extension. A profile sets tile metrics, the colour palette,
// the mismatch delay and whether remote sessions hide mismatches
// automatically. Fields left out keep their built-in defaults.
//
// Usage:
//
//	manager, err := config.NewManager("settings")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fast, err := manager.LoadSettings("fast")
//	defaults := manager.GetDefault()
//	profiles, err := manager.ListProfiles()
package config
