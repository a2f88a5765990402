package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// searchFlags are the flags shared by search and watch.
type searchFlags struct {
	extensions []string
	includes   []string
	excludes   []string
	wholeFile  bool
	json       bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.extensions, "ext", "e", nil,
		`file extensions to search, e.g. ".md,.txt" (".*" for all files; default from settings)`)
	cmd.Flags().StringArrayVarP(&f.includes, "include", "i", nil, "phrase that must be present (repeatable)")
	cmd.Flags().StringArrayVarP(&f.excludes, "exclude", "x", nil, "phrase that must be absent (repeatable)")
	cmd.Flags().BoolVarP(&f.wholeFile, "whole-file", "w", false, "match whole files instead of lines")
	cmd.Flags().BoolVar(&f.json, "json", false, "output events as JSON lines")
}

// config builds a search configuration from the flags, the optional
// root argument and the stored settings.
func (f *searchFlags) config(cmd *cobra.Command, args []string) (domain.SearchConfig, error) {
	defaults := domain.DefaultAppSettings()
	settings := &defaults
	if settingsService != nil {
		s, err := settingsService.Get()
		if err != nil {
			return domain.SearchConfig{}, fmt.Errorf("failed to get settings: %w", err)
		}
		settings = s
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	exts := settings.Search.Extensions
	if len(f.extensions) > 0 {
		exts = domain.NewExtensionSet(f.extensions...)
	}

	granularity := settings.Search.Granularity
	if cmd.Flags().Changed("whole-file") {
		granularity = domain.GranularityLine
		if f.wholeFile {
			granularity = domain.GranularityWholeFile
		}
	}

	return domain.SearchConfig{
		RootPath:    root,
		Extensions:  exts,
		Rules:       domain.Rules(f.includes, f.excludes),
		Granularity: granularity,
	}, nil
}

var (
	searchOpts       searchFlags
	searchMaxResults int
	searchTimeout    time.Duration
	searchRerun      string
)

var searchCmd = &cobra.Command{
	Use:   "search [path]",
	Short: "Search file contents",
	Long: `Searches every file below path (default ".") whose name ends with one of
the selected extensions. A line matches when it contains every include
phrase and no exclude phrase. Phrases are literal and case-sensitive.

With --whole-file the test is applied to the whole file instead and each
matching file is reported once.

Examples:
  seek search ./notes -e .md -i TODO -x DONE
  seek search . -e ".*" -i "func main" --whole-file
  seek search --rerun 1a2b3c4d`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchOpts.register(searchCmd)
	searchCmd.Flags().IntVarP(&searchMaxResults, "max-results", "n", 0, "stop after this many matches (0 = no limit)")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 0, "cancel the search after this duration (0 = none)")
	searchCmd.Flags().StringVar(&searchRerun, "rerun", "", "repeat a search from the history by ID")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errNoSearchService
	}

	cfg, err := searchConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, searchTimeout)
		defer cancel()
	}

	session, err := searchService.Start(ctx, cfg)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	p := newPrinter(cmd.OutOrStdout(), searchOpts.json)
	return streamSession(session, p, searchMaxResults)
}

func searchConfig(cmd *cobra.Command, args []string) (domain.SearchConfig, error) {
	if searchRerun == "" {
		return searchOpts.config(cmd, args)
	}
	if len(args) > 0 {
		return domain.SearchConfig{}, errors.New("--rerun cannot be combined with a path")
	}
	if historyService == nil {
		return domain.SearchConfig{}, errors.New("history service not configured")
	}
	rec, err := historyService.Get(cmd.Context(), searchRerun)
	if err != nil {
		return domain.SearchConfig{}, fmt.Errorf("failed to get search %s: %w", searchRerun, err)
	}
	return rec.Config, nil
}

// streamSession prints events as they arrive. Once maxResults matches have
// been printed the session is cancelled and further matches are dropped.
func streamSession(session driving.Session, p *printer, maxResults int) error {
	printed := 0
	summarised := false
	for ev := range session.Events() {
		switch e := ev.(type) {
		case domain.MatchEvent:
			if maxResults > 0 && printed >= maxResults {
				continue
			}
			printed++
			if maxResults > 0 && printed == maxResults {
				session.Cancel()
			}
		case domain.SessionSummary:
			summarised = true
			if maxResults > 0 && printed >= maxResults {
				e.MatchCount = printed
				ev = e
			}
		}
		if err := p.Event(0, ev); err != nil {
			return err
		}
	}

	if summarised {
		return nil
	}
	// The summary is not sent once the search context has ended.
	<-session.Done()
	summary, _ := session.Summary()
	if maxResults > 0 && printed >= maxResults {
		summary.MatchCount = printed
	}
	return p.Event(0, summary)
}
