package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
	historyForce bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Long: `Lists recent searches, most recent first. Each entry keeps the search
configuration and its summary. Use "seek search --rerun <id>" to repeat one.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a recorded search",
	Long:  `Shows a recorded search. The ID may be shortened to any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the search history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of searches (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyClearCmd.Flags().BoolVarP(&historyForce, "force", "f", false, "do not ask for confirmation")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	records, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		cmd.Println("No searches recorded.")
		return nil
	}

	cmd.Printf("%-8s  %-19s  %-9s  %7s  %s\n", "ID", "STARTED", "STATUS", "MATCHES", "ROOT")
	for i := range records {
		r := records[i]
		cmd.Printf("%-8s  %-19s  %-9s  %7d  %s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			r.Status(),
			r.MatchCount,
			r.Config.RootPath,
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	r, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get search %s: %w", args[0], err)
	}

	cmd.Printf("ID:          %s\n", r.ID)
	cmd.Printf("Session:     %s\n", r.SessionID)
	cmd.Printf("Root:        %s\n", r.Config.RootPath)
	cmd.Printf("Extensions:  %s\n", r.Config.Extensions)
	cmd.Printf("Granularity: %s\n", r.Config.Granularity.Description())
	if includes := r.Config.Includes(); len(includes) > 0 {
		cmd.Printf("Include:     %s\n", quoteAll(includes))
	}
	if excludes := r.Config.Excludes(); len(excludes) > 0 {
		cmd.Printf("Exclude:     %s\n", quoteAll(excludes))
	}
	cmd.Printf("Started:     %s\n", r.StartedAt.Local().Format(time.DateTime))
	cmd.Printf("Duration:    %s\n", r.Duration().Round(time.Millisecond))
	cmd.Printf("Status:      %s\n", r.Status())
	cmd.Printf("Matches:     %d\n", r.MatchCount)
	cmd.Printf("Errors:      %d\n", r.ErrorCount)
	cmd.Printf("Files:       %d\n", r.FilesScanned)
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	if !historyForce {
		cmd.Print("Delete the whole search history? [y/N]: ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := historyService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("Search history cleared.")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func quoteAll(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return strings.Join(quoted, ", ")
}
