// Command seek searches file contents by phrase.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/seek/internal/adapters/driven/config/file"
	"github.com/custodia-labs/seek/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/seek/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/seek/internal/adapters/driving/cli"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
	"github.com/custodia-labs/seek/internal/core/services"
	"github.com/custodia-labs/seek/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version, wire); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wire builds the services for configDir. An empty configDir selects ~/.seek.
// History is best effort: when its database cannot be opened searches still run.
func wire(configDir string) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("settings: %w", err)
	}

	enumerator := filesystem.NewEnumerator()
	searchService := services.NewSearchService(enumerator, filesystem.NewReader())
	searchService.SetEventBuffer(settings.Search.EventBuffer)

	release := func() {}
	var historyStore driven.HistoryStore
	if settings.History.Enabled {
		dataDir := ""
		if configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			logger.Warn("search history disabled: %v", err)
		} else {
			historyStore = store.HistoryStore()
			searchService.SetHistoryStore(historyStore, settings.History.Retention)
			release = func() {
				if err := store.Close(); err != nil {
					logger.Warn("close history: %v", err)
				}
			}
		}
	}

	interval := time.Duration(settings.Watch.MinIntervalMs) * time.Millisecond
	watchService := services.NewWatchService(searchService, filesystem.NewWatcher(), interval)

	return &cli.Services{
		Search:   searchService,
		History:  services.NewHistoryService(historyStore),
		Settings: settingsService,
		Watch:    watchService,
	}, release, nil
}
