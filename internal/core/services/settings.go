package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeySearchExtensions  = "search.extensions"
	KeySearchGranularity = "search.granularity"
	KeySearchEventBuffer = "search.event_buffer"
	KeyHistoryEnabled    = "history.enabled"
	KeyHistoryRetention  = "history.retention"
	KeyWatchMinInterval  = "watch.min_interval_ms"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to their defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			Extensions:  s.getExtensions(defaults.Search.Extensions),
			Granularity: s.getGranularity(defaults.Search.Granularity),
			EventBuffer: s.getInt(KeySearchEventBuffer, defaults.Search.EventBuffer),
		},
		History: domain.HistorySettings{
			Enabled:   s.getBool(KeyHistoryEnabled, defaults.History.Enabled),
			Retention: s.getInt(KeyHistoryRetention, defaults.History.Retention),
		},
		Watch: domain.WatchSettings{
			MinIntervalMs: s.getInt(KeyWatchMinInterval, defaults.Watch.MinIntervalMs),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	exts := make([]any, 0, len(settings.Search.Extensions))
	for _, ext := range settings.Search.Extensions.Effective() {
		exts = append(exts, ext)
	}
	values := []struct {
		key   string
		value any
	}{
		{KeySearchExtensions, exts},
		{KeySearchGranularity, settings.Search.Granularity.String()},
		{KeySearchEventBuffer, settings.Search.EventBuffer},
		{KeyHistoryEnabled, settings.History.Enabled},
		{KeyHistoryRetention, settings.History.Retention},
		{KeyWatchMinInterval, settings.Watch.MinIntervalMs},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set parses value for key, updates the setting and persists it.
// Extensions are given comma-separated.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case KeySearchExtensions:
		settings.Search.Extensions = domain.NewExtensionSet(strings.Split(value, ",")...)
		if settings.Search.Extensions.IsEmpty() {
			return fmt.Errorf("%s: at least one extension is required: %w", key, domain.ErrInvalidInput)
		}
	case KeySearchGranularity:
		g, err := domain.ParseGranularity(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		settings.Search.Granularity = g
	case KeySearchEventBuffer:
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		settings.Search.EventBuffer = n
	case KeyHistoryEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean: %w", key, value, domain.ErrInvalidInput)
		}
		settings.History.Enabled = b
	case KeyHistoryRetention:
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		settings.History.Retention = n
	case KeyWatchMinInterval:
		n, err := parsePositive(key, value)
		if err != nil {
			return err
		}
		settings.Watch.MinIntervalMs = n
	default:
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrNotFound)
	}

	return s.Save(settings)
}

// Keys returns the recognised setting keys.
func (s *SettingsService) Keys() []string {
	return []string{
		KeySearchExtensions,
		KeySearchGranularity,
		KeySearchEventBuffer,
		KeyHistoryEnabled,
		KeyHistoryRetention,
		KeyWatchMinInterval,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func parsePositive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: %q is not a non-negative integer: %w", key, value, domain.ErrInvalidInput)
	}
	return n, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getExtensions(defaultVal domain.ExtensionSet) domain.ExtensionSet {
	set := domain.NewExtensionSet(s.configStore.GetStringSlice(KeySearchExtensions)...)
	if set.IsEmpty() {
		return defaultVal
	}
	return set
}

func (s *SettingsService) getGranularity(defaultVal domain.Granularity) domain.Granularity {
	val := s.configStore.GetString(KeySearchGranularity)
	if val == "" {
		return defaultVal
	}
	g := domain.Granularity(val)
	if !g.IsValid() {
		return defaultVal
	}
	return g
}
