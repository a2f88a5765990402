package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, ExtensionSet{".md", ".txt"}, s.Search.Extensions)
	assert.Equal(t, GranularityLine, s.Search.Granularity)
	assert.Equal(t, 256, s.Search.EventBuffer)
	assert.True(t, s.History.Enabled)
	assert.Equal(t, 100, s.History.Retention)
	assert.Equal(t, 500, s.Watch.MinIntervalMs)
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *AppSettings)
	}{
		{"bad granularity", func(s *AppSettings) { s.Search.Granularity = "page" }},
		{"negative buffer", func(s *AppSettings) { s.Search.EventBuffer = -1 }},
		{"negative retention", func(s *AppSettings) { s.History.Retention = -5 }},
		{"negative interval", func(s *AppSettings) { s.Watch.MinIntervalMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

func TestAllGranularities(t *testing.T) {
	for _, g := range AllGranularities() {
		assert.True(t, g.IsValid())
	}
	assert.Len(t, AllGranularities(), 2)
}

func TestCommonExtensions(t *testing.T) {
	assert.Equal(t, []string{".md", ".txt", ".html", ".py"}, CommonExtensions())
}
