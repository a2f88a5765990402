package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/seek/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/seek/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/services"
)

// testServices are the services installed by setupTestServices.
type testServices struct {
	search   *services.SearchService
	history  *memory.HistoryStore
	settings *services.SettingsService
	watch    *fakeWatchService
}

// setupTestServices installs services backed by memory stores and the
// real filesystem. The returned func restores the previous state.
func setupTestServices() (*testServices, func()) {
	historyStore := memory.NewHistoryStore()
	search := services.NewSearchService(filesystem.NewEnumerator(), filesystem.NewReader())
	search.SetHistoryStore(historyStore, 0)

	ts := &testServices{
		search:   search,
		history:  historyStore,
		settings: services.NewSettingsService(memory.NewConfigStore()),
		watch:    &fakeWatchService{},
	}
	SetServices(&Services{
		Search:   ts.search,
		History:  services.NewHistoryService(historyStore),
		Settings: ts.settings,
		Watch:    ts.watch,
	})

	return ts, func() {
		SetServices(nil)
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the command tree with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeTree creates files below a temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// fakeWatchService replays a fixed list of runs.
type fakeWatchService struct {
	runs [][]domain.Event
	err  error
	cfg  domain.SearchConfig
}

func (f *fakeWatchService) Watch(
	_ context.Context, cfg domain.SearchConfig, onEvent func(run int, ev domain.Event),
) error {
	f.cfg = cfg
	if f.err != nil {
		return f.err
	}
	for i, events := range f.runs {
		for _, ev := range events {
			onEvent(i+1, ev)
		}
	}
	return nil
}
