package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/seek/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/seek/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeySearchExtensions, []any{".go", ".mod"})
	_ = store.Set(KeySearchGranularity, "file")
	_ = store.Set(KeySearchEventBuffer, int64(32))
	_ = store.Set(KeyHistoryEnabled, false)
	_ = store.Set(KeyHistoryRetention, 0)
	_ = store.Set(KeyWatchMinInterval, 100)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.ExtensionSet{".go", ".mod"}, settings.Search.Extensions)
	assert.Equal(t, domain.GranularityWholeFile, settings.Search.Granularity)
	assert.Equal(t, 32, settings.Search.EventBuffer)
	assert.False(t, settings.History.Enabled)
	assert.Equal(t, 0, settings.History.Retention)
	assert.Equal(t, 100, settings.Watch.MinIntervalMs)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeySearchGranularity, "paragraph")
	_ = store.Set(KeySearchExtensions, []any{"", " "})
	_ = store.Set(KeyHistoryRetention, -3)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Search.Granularity, settings.Search.Granularity)
	assert.Equal(t, defaults.Search.Extensions, settings.Search.Extensions)
	assert.Equal(t, defaults.History.Retention, settings.History.Retention)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Search.Extensions = domain.ExtensionSet{".py"}
	settings.History.Enabled = false
	require.NoError(t, service.Save(&settings))
	assert.Equal(t, 1, store.Saves())

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_SaveRejectsInvalid(t *testing.T) {
	store := memory.NewConfigStore()
	settings := domain.DefaultAppSettings()
	settings.Search.Granularity = "page"

	err := NewSettingsService(store).Save(&settings)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, store.Saves())
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{KeySearchExtensions, ".md, .rst,,", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.ExtensionSet{".md", ".rst"}, s.Search.Extensions)
		}},
		{KeySearchGranularity, "whole", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, domain.GranularityWholeFile, s.Search.Granularity)
		}},
		{KeySearchEventBuffer, "16", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 16, s.Search.EventBuffer)
		}},
		{KeyHistoryEnabled, "false", func(t *testing.T, s *domain.AppSettings) {
			assert.False(t, s.History.Enabled)
		}},
		{KeyHistoryRetention, "5", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 5, s.History.Retention)
		}},
		{KeyWatchMinInterval, "1000", func(t *testing.T, s *domain.AppSettings) {
			assert.Equal(t, 1000, s.Watch.MinIntervalMs)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())
			require.NoError(t, service.Set(tt.key, tt.value))

			got, err := service.Get()
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestSettingsService_SetErrors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.ErrorIs(t, service.Set("nope", "1"), domain.ErrNotFound)
	assert.ErrorIs(t, service.Set(KeySearchExtensions, " , "), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set(KeySearchGranularity, "page"), domain.ErrUnsupportedGranularity)
	assert.ErrorIs(t, service.Set(KeySearchEventBuffer, "-1"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set(KeyHistoryEnabled, "maybe"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set(KeyWatchMinInterval, "soon"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore()).Keys()
	assert.Len(t, keys, 6)
	assert.Contains(t, keys, KeySearchExtensions)
}
