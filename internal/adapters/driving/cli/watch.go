package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/seek/internal/core/domain"
)

var watchOpts searchFlags

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run a search whenever files change",
	Long: `Runs a search like "seek search" and runs it again each time a file
below path is created, written, removed or renamed. A running search is
stopped before the next one starts.

Re-runs are throttled by the watch.min_interval_ms setting. Press Ctrl-C
to stop watching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchOpts.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchService == nil {
		return errors.New("watch service not configured")
	}

	cfg, err := watchOpts.config(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := newPrinter(cmd.OutOrStdout(), watchOpts.json)
	current := 0
	var printErr error
	err = watchService.Watch(ctx, cfg, func(run int, ev domain.Event) {
		if printErr != nil {
			return
		}
		if run != current {
			current = run
			if run > 1 {
				printErr = p.Notice("\n--- run %d ---", run)
			}
		}
		if printErr == nil {
			printErr = p.Event(run, ev)
		}
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return printErr
}
