// Package cli implements the seek command tree.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/seek/internal/core/ports/driving"
	"github.com/custodia-labs/seek/internal/logger"
)

// version is set by Execute.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services used by the commands.
var (
	searchService   driving.SearchService
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	watchService    driving.WatchService
)

// Services holds the driving ports the commands run against.
type Services struct {
	Search   driving.SearchService
	History  driving.HistoryService
	Settings driving.SettingsService
	Watch    driving.WatchService
}

// Bootstrap builds the services for a configuration directory.
// An empty directory selects ~/.seek. The returned func releases them.
type Bootstrap func(configDir string) (*Services, func(), error)

var (
	bootstrap Bootstrap
	release   func()
)

var rootCmd = &cobra.Command{
	Use:   "seek",
	Short: "Search file contents by phrase",
	Long: `seek walks a directory tree and streams every line (or file) that
contains all include phrases and none of the exclude phrases.

Results appear while the search runs. Ctrl-C stops a search and still
prints its summary.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.seek)")
}

// SetServices sets the services the commands run against.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	searchService = s.Search
	historyService = s.History
	settingsService = s.Settings
	watchService = s.Watch
}

// Execute runs the command tree. b is called once, before the first
// command runs, unless services were already set.
func Execute(v string, b Bootstrap) error {
	version = v
	bootstrap = b
	defer func() {
		if release != nil {
			release()
			release = nil
		}
	}()
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || searchService != nil {
		return nil
	}
	services, closeFn, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	release = closeFn
	return nil
}

var errNoSearchService = errors.New("search service not configured")
