package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-puzzle/game/engine"
	"github.com/wricardo/memory-puzzle/game/service"
)

var (
	ErrSettingsNotFound = errors.New("settings profile not found")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// DefaultProfile is the profile name used when none is requested
const DefaultProfile = "default"

// settingsExtensions lists the file formats a profile may be stored in, by preference
var settingsExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles settings profile loading and caching
type Manager struct {
	settingsDir     string
	defaultSettings *engine.Settings
	profiles        map[string]*engine.Settings
	mu              sync.RWMutex
}

var _ service.ConfigManager = (*Manager)(nil)

// NewManager creates a new settings manager. An empty directory serves the
// built-in defaults only.
func NewManager(settingsDir string) (*Manager, error) {
	if settingsDir != "" {
		if _, err := os.Stat(settingsDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("settings directory does not exist: %s", settingsDir)
		}
	}

	m := &Manager{
		settingsDir: settingsDir,
		profiles:    make(map[string]*engine.Settings),
	}

	if err := m.loadDefaultSettings(); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	return m, nil
}

// LoadSettings loads a settings profile by name
func (m *Manager) LoadSettings(name string) (*engine.Settings, error) {
	name = profileName(name)
	if err := checkProfileName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if settings, exists := m.profiles[name]; exists {
		m.mu.RUnlock()
		return settings, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if settings, exists := m.profiles[name]; exists {
		return settings, nil
	}

	path, ok := m.findProfileFile(name)
	if !ok {
		if name == DefaultProfile {
			return engine.DefaultSettings(), nil
		}
		return nil, ErrSettingsNotFound
	}

	settings, err := engine.LoadSettingsFile(path)
	if err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		return nil, fmt.Errorf("failed to load settings %s: %w", name, err)
	}

	m.profiles[name] = settings
	return settings, nil
}

// ListProfiles returns information about all available settings profiles
func (m *Manager) ListProfiles() ([]*service.ProfileInfo, error) {
	var profiles []*service.ProfileInfo
	seen := make(map[string]bool)

	if m.settingsDir != "" {
		entries, err := os.ReadDir(m.settingsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings directory: %w", err)
		}

		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			if entry.IsDir() || !isSettingsExtension(ext) {
				continue
			}

			name := strings.TrimSuffix(entry.Name(), ext)
			if seen[name] {
				continue
			}

			settings, err := m.LoadSettings(name)
			if err != nil {
				log.Debug().Err(err).Str("profile", name).Msg("skipping invalid settings profile")
				continue
			}
			seen[name] = true

			profiles = append(profiles, profileInfo(entry.Name(), name, settings))
		}
	}

	if !seen[DefaultProfile] {
		profiles = append(profiles, profileInfo("", DefaultProfile, m.GetDefault()))
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].ProfileID < profiles[j].ProfileID
	})
	return profiles, nil
}

// GetDefault returns the default settings
func (m *Manager) GetDefault() *engine.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSettings
}

// SetDefault sets the default settings by profile name
func (m *Manager) SetDefault(name string) error {
	settings, err := m.LoadSettings(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultSettings = settings
	return nil
}

// RefreshCache reloads all cached profiles from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.profiles = make(map[string]*engine.Settings)
	m.mu.Unlock()

	return m.loadDefaultSettings()
}

// SaveSettings saves a settings profile to disk as JSON
func (m *Manager) SaveSettings(name string, settings *engine.Settings) error {
	if m.settingsDir == "" {
		return fmt.Errorf("no settings directory configured")
	}
	if err := engine.ValidateSettings(settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	name = profileName(name)
	if err := checkProfileName(name); err != nil {
		return err
	}
	path := filepath.Join(m.settingsDir, name+".json")

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	m.mu.Lock()
	m.profiles[name] = settings
	m.mu.Unlock()

	return nil
}

// loadDefaultSettings loads the "default" profile, or the built-in settings if there is none
func (m *Manager) loadDefaultSettings() error {
	settings, err := m.LoadSettings(DefaultProfile)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultSettings = settings
	m.mu.Unlock()
	return nil
}

func (m *Manager) findProfileFile(name string) (string, bool) {
	if m.settingsDir == "" {
		return "", false
	}
	for _, ext := range settingsExtensions {
		path := filepath.Join(m.settingsDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func profileName(name string) string {
	name = strings.TrimSpace(name)
	for _, ext := range settingsExtensions {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		return DefaultProfile
	}
	return name
}

// checkProfileName rejects names that would resolve outside the settings directory
func checkProfileName(name string) error {
	if name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: profile name %q must be a plain file name", ErrInvalidSettings, name)
	}
	return nil
}

func isSettingsExtension(ext string) bool {
	for _, e := range settingsExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func profileInfo(filename, id string, s *engine.Settings) *service.ProfileInfo {
	return &service.ProfileInfo{
		Filename:        filename,
		ProfileID:       id,
		Name:            s.Name,
		Description:     s.Description,
		MismatchDelayMS: s.MismatchDelayMS,
		AutoResolve:     s.AutoResolve,
		DefaultLevel:    s.DefaultLevel,
	}
}
