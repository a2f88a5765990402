// Package history provides the search history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// ErrHistoryDisabled is reported when no history service is configured.
var ErrHistoryDisabled = errors.New("search history is disabled")

// listLimit bounds the number of records loaded.
const listLimit = 100

// View lists recorded searches. Selecting one reruns it.
type View struct {
	styles         *styles.Styles
	historyService driving.HistoryService
	ctx            context.Context

	records  []domain.SearchRecord
	selected int
	offset   int
	loading  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new history view.
func NewView(s *styles.Styles, historyService driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:         s,
		historyService: historyService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadHistory()
}

func (v *View) loadHistory() tea.Cmd {
	svc, ctx := v.historyService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{Err: ErrHistoryDisabled}
		}
		records, err := svc.List(ctx, listLimit)
		return messages.HistoryLoaded{Records: records, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.records = nil
			return v, nil
		}
		v.err = nil
		v.records = msg.Records
		if v.selected >= len(v.records) {
			v.selected = 0
			v.offset = 0
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
		v.keepVisible()
	case "down", "j":
		if v.selected < len(v.records)-1 {
			v.selected++
		}
		v.keepVisible()
	case "r":
		return v, v.Init()
	case "enter":
		rec := v.SelectedRecord()
		if rec == nil {
			return v, nil
		}
		cfg := rec.Config
		return v, func() tea.Msg {
			return messages.RerunRequested{Config: cfg}
		}
	}
	return v, nil
}

// visibleRows is the number of records shown at once.
func (v *View) visibleRows() int {
	n := v.height - 10
	if n < 3 {
		n = 3
	}
	return n
}

func (v *View) keepVisible() {
	rows := v.visibleRows()
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+rows {
		v.offset = v.selected - rows + 1
	}
}

// View renders the history view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading history..."))
		b.WriteString("\n")
	case len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("No searches recorded."))
		b.WriteString("\n")
	default:
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("  %-8s  %-19s  %-9s  %7s  %s",
			"ID", "STARTED", "STATUS", "MATCHES", "ROOT")))
		b.WriteString("\n")
		end := v.offset + v.visibleRows()
		if end > len(v.records) {
			end = len(v.records)
		}
		for i := v.offset; i < end; i++ {
			b.WriteString(v.renderRecord(i))
			b.WriteString("\n")
		}
		if rec := v.SelectedRecord(); rec != nil {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(describe(rec.Config)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] rerun  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderRecord(i int) string {
	r := v.records[i]
	line := fmt.Sprintf("%-8s  %-19s  %-9s  %7d  %s",
		shortID(r.ID),
		r.StartedAt.Local().Format(time.DateTime),
		r.Status(),
		r.MatchCount,
		r.Config.RootPath,
	)
	if i == v.selected {
		return "> " + v.styles.Focused.Render(line)
	}
	return "  " + v.styles.Normal.Render(line)
}

// describe renders the extensions and rules of cfg on one line.
func describe(cfg domain.SearchConfig) string {
	parts := []string{cfg.Extensions.String()}
	for _, r := range cfg.Rules {
		if r.IsEmpty() {
			continue
		}
		sign := "+"
		if r.Mode == domain.RuleExclude {
			sign = "-"
		}
		parts = append(parts, fmt.Sprintf("%s%q", sign, r.Text))
	}
	parts = append(parts, cfg.EffectiveGranularity().String())
	return strings.Join(parts, "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.keepVisible()
}

// Records returns the loaded records.
func (v *View) Records() []domain.SearchRecord {
	return v.records
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// SelectedRecord returns the selected record, or nil.
func (v *View) SelectedRecord() *domain.SearchRecord {
	if v.selected < 0 || v.selected >= len(v.records) {
		return nil
	}
	return &v.records[v.selected]
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
