// Package search provides the search form and live results view for the TUI.
package search

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// formHeight is the number of lines the header and form occupy.
const formHeight = 20

// ErrNoSearchService is shown when the view has no search service to start sessions with.
var ErrNoSearchService = errors.New("search service is required")

// View is the search view: the parameter form, the streaming results
// pane and the status bar. At most one session runs at a time.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	form      *form
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context

	// session is the running session; nil when idle.
	session driving.Session
	// starting is set while a Start call is in flight.
	starting bool
	// stopRequested cancels a session as soon as it has started.
	stopRequested bool

	matches int
	errors  int

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		form:          newForm(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context sessions are started with.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the current form field.
func (v *View) Init() tea.Cmd {
	return v.form.setFocus(v.form.focus)
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchStarted:
		return v, v.handleStarted(msg)

	case messages.SearchEvent:
		if v.session == nil || msg.SessionID != v.session.ID() {
			return v, nil
		}
		v.handleEvent(msg.Event)
		return v, waitForEvent(v.session)

	case messages.SearchFinished:
		if v.session == nil || msg.SessionID != v.session.ID() {
			return v, nil
		}
		v.handleFinished(msg.Summary)
		return v, nil

	case messages.RerunRequested:
		v.SetConfig(msg.Config)
		return v, v.startSearch()

	case messages.ErrorOccurred:
		v.showError(msg.Err)
		return v, nil
	}

	return v, v.form.update(msg)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Cancel) && v.Running():
		v.Stop()
		return v, nil
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case key.Matches(msg, v.keymap.Search):
		return v, v.startSearch()
	case key.Matches(msg, v.keymap.NextField), key.Matches(msg, v.keymap.Down):
		return v, v.form.next()
	case key.Matches(msg, v.keymap.PrevField), key.Matches(msg, v.keymap.Up):
		return v, v.form.prev()
	case key.Matches(msg, v.keymap.Toggle):
		v.form.toggle()
		return v, nil
	case key.Matches(msg, v.keymap.ScrollUp):
		v.list.ScrollUp(v.list.Height() / 2)
		return v, nil
	case key.Matches(msg, v.keymap.ScrollDown):
		v.list.ScrollDown(v.list.Height() / 2)
		return v, nil
	case msg.String() == " " && v.form.isToggle():
		v.form.toggle()
		return v, nil
	}

	return v, v.form.update(msg)
}

// startSearch starts a session for the form's configuration. A running
// session is cancelled and awaited first.
func (v *View) startSearch() tea.Cmd {
	if v.searchService == nil {
		v.showError(ErrNoSearchService)
		return nil
	}
	if v.starting {
		return nil
	}

	cfg := v.form.config()
	prev := v.session
	v.session = nil
	v.starting = true
	v.stopRequested = false
	v.err = nil
	v.matches, v.errors = 0, 0
	v.list.Clear()
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateSearching)

	svc, ctx := v.searchService, v.ctx
	return func() tea.Msg {
		if prev != nil {
			prev.Cancel()
			prev.Wait()
		}
		session, err := svc.Start(ctx, cfg)
		return messages.SearchStarted{Session: session, Err: err}
	}
}

func (v *View) handleStarted(msg messages.SearchStarted) tea.Cmd {
	v.starting = false
	if msg.Err != nil {
		v.showError(msg.Err)
		return nil
	}
	v.session = msg.Session
	if v.stopRequested {
		v.session.Cancel()
		v.statusbar.SetState(status.StateCancelling)
	}
	return waitForEvent(v.session)
}

func (v *View) handleEvent(ev domain.Event) {
	switch ev.(type) {
	case domain.MatchEvent:
		v.matches++
	case domain.ErrorEvent:
		v.errors++
	}
	v.list.Append(ev)
	v.statusbar.SetCounts(v.matches, v.errors)
}

func (v *View) handleFinished(summary domain.SessionSummary) {
	v.session = nil
	v.list.SetSummary(summary)
	v.statusbar.SetCounts(summary.MatchCount, summary.ErrorCount)
	if summary.Completed {
		v.statusbar.SetState(status.StateComplete)
	} else {
		v.statusbar.SetState(status.StateCancelled)
	}
}

// waitForEvent reads the next event of session. A summary or a closed
// stream ends the session.
func waitForEvent(session driving.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-session.Events()
		if !ok {
			<-session.Done()
			summary, _ := session.Summary()
			return messages.SearchFinished{SessionID: session.ID(), Summary: summary}
		}
		if summary, isSummary := ev.(domain.SessionSummary); isSummary {
			return messages.SearchFinished{SessionID: session.ID(), Summary: summary}
		}
		return messages.SearchEvent{SessionID: session.ID(), Event: ev}
	}
}

func (v *View) showError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// Stop cancels the running session, or the one being started. It does not wait.
func (v *View) Stop() {
	if v.starting {
		v.stopRequested = true
		v.statusbar.SetState(status.StateCancelling)
		return
	}
	if v.session != nil {
		v.session.Cancel()
		v.statusbar.SetState(status.StateCancelling)
	}
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("seek"), "", v.form.view(), "")
	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.form.setWidth(width)
	listHeight := height - formHeight - 3
	if listHeight < 3 {
		listHeight = 3
	}
	v.list.SetDimensions(width, listHeight)
	v.statusbar.SetWidth(width)
}

// SetConfig loads cfg into the form.
func (v *View) SetConfig(cfg domain.SearchConfig) {
	v.form.apply(cfg)
}

// Config returns the configuration the form currently describes.
func (v *View) Config() domain.SearchConfig {
	return v.form.config()
}

// Running reports whether a session is starting or running.
func (v *View) Running() bool {
	return v.starting || v.session != nil
}

// Session returns the running session, or nil.
func (v *View) Session() driving.Session {
	return v.session
}

// Events returns the match and error events shown for the last search.
func (v *View) Events() []domain.Event {
	return v.list.Events()
}

// Summary returns the summary of the last finished search.
func (v *View) Summary() (domain.SessionSummary, bool) {
	return v.list.Summary()
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}

// Focus returns the index of the focused form item.
func (v *View) Focus() int {
	return v.form.focus
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
