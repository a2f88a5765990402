package search

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/seek/internal/core/domain"
)

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyToggle   = tea.KeyMsg{Type: tea.KeyCtrlT}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

// drive runs cmd and feeds every resulting message back into the view
// until no command is left.
func drive(v *View, cmd tea.Cmd) *View {
	for i := 0; cmd != nil && i < 100; i++ {
		v, cmd = v.Update(cmd())
	}
	return v
}

func newTestView(svc *mockSearchService) *View {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), svc)
	v.Init()
	v.SetDimensions(120, 40)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Ready())
	assert.False(t, v.Running())
	assert.Equal(t, itemFirstPhrase, v.Focus())

	cfg := v.Config()
	assert.Equal(t, ".", cfg.RootPath)
	assert.Equal(t, domain.ExtensionSet{".md", ".txt"}, cfg.Extensions)
	assert.Empty(t, cfg.Rules)
	assert.Equal(t, domain.GranularityLine, cfg.Granularity)
}

func TestView_InitFocusesFirstPhrase(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.Init()

	assert.True(t, v.form.phrases[0].Focused())
}

func TestView_TypePhrase(t *testing.T) {
	v := newTestView(&mockSearchService{})

	v = typeText(v, "TODO")

	assert.Equal(t, []domain.PhraseRule{domain.Include("TODO")}, v.Config().Rules)
}

func TestView_ToggleRuleMode(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v = typeText(v, "DONE")

	v, _ = v.Update(keyToggle)

	assert.Equal(t, []domain.PhraseRule{domain.Exclude("DONE")}, v.Config().Rules)
	assert.Equal(t, "- exclude", v.form.phrases[0].Label())
}

func TestView_MultipleRules(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v = typeText(v, "alpha")
	v, _ = v.Update(keyTab)
	v = typeText(v, "beta")
	v, _ = v.Update(keyToggle)

	assert.Equal(t, []domain.PhraseRule{domain.Include("alpha"), domain.Exclude("beta")}, v.Config().Rules)
}

func TestView_FocusNavigation(t *testing.T) {
	v := newTestView(&mockSearchService{})

	v, _ = v.Update(keyTab)
	assert.Equal(t, itemFirstPhrase+1, v.Focus())
	assert.True(t, v.form.phrases[1].Focused())
	assert.False(t, v.form.phrases[0].Focused())

	v, _ = v.Update(keyShiftTab)
	v, _ = v.Update(keyShiftTab)
	assert.Equal(t, itemCustomField, v.Focus())
}

func TestView_FocusWraps(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v.form.setFocus(0)

	v, _ = v.Update(keyShiftTab)
	assert.Equal(t, itemStart, v.Focus())

	v, _ = v.Update(keyTab)
	assert.Equal(t, 0, v.Focus())
}

func TestView_SpaceTogglesCheckbox(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v.form.setFocus(2)

	v, _ = v.Update(keySpace)
	assert.Equal(t, domain.ExtensionSet{".md", ".txt", ".html"}, v.Config().Extensions)

	v.form.setFocus(0)
	v, _ = v.Update(keySpace)
	assert.Equal(t, domain.ExtensionSet{".txt", ".html"}, v.Config().Extensions)
}

func TestView_SpaceTypesInTextField(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v = typeText(v, "a")
	v, _ = v.Update(keySpace)
	v = typeText(v, "b")

	assert.Equal(t, "a b", v.Config().Rules[0].Text)
}

func TestView_CustomExtensions(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v.form.setFocus(itemCustomToggle)
	v, _ = v.Update(keySpace)
	v, _ = v.Update(keyTab)
	v = typeText(v, ".go, .rs")

	assert.Equal(t, domain.ExtensionSet{".md", ".txt", ".go", ".rs"}, v.Config().Extensions)
}

func TestView_CustomIgnoredWhenUnchecked(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v.form.setFocus(itemCustomField)
	v = typeText(v, ".go")

	assert.Equal(t, domain.ExtensionSet{".md", ".txt"}, v.Config().Extensions)
}

func TestView_GranularityToggle(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v.form.setFocus(itemGranularity)

	v, _ = v.Update(keySpace)
	assert.Equal(t, domain.GranularityWholeFile, v.Config().Granularity)

	v, _ = v.Update(keyToggle)
	assert.Equal(t, domain.GranularityLine, v.Config().Granularity)
}

func TestView_PathField(t *testing.T) {
	v := newTestView(&mockSearchService{})
	v.form.setFocus(itemPath)
	v.form.path.SetValue("")

	v = typeText(v, " /docs ")

	assert.Equal(t, "/docs", v.Config().RootPath)
}

func TestView_SearchStreamsResults(t *testing.T) {
	session := newMockSession("s1", true,
		domain.MatchEvent{Path: "/docs/a.md", Line: 2, Excerpt: "TODO one"},
		domain.ErrorEvent{Path: "/docs/b.md", Message: "permission denied"},
		domain.MatchEvent{Path: "/docs/c.md", Line: 7, Excerpt: "TODO two"},
	)
	svc := &mockSearchService{sessions: []*mockSession{session}}
	v := newTestView(svc)
	v = typeText(v, "TODO")

	v, cmd := v.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, v.Running())
	assert.Equal(t, status.StateSearching, v.StatusState())

	v = drive(v, cmd)

	assert.False(t, v.Running())
	assert.Len(t, v.Events(), 3)
	summary, ok := v.Summary()
	require.True(t, ok)
	assert.True(t, summary.Completed)
	assert.Equal(t, 2, summary.MatchCount)
	assert.Equal(t, status.StateComplete, v.StatusState())
	assert.Equal(t, 2, v.statusbar.MatchCount())
	assert.Equal(t, 1, v.statusbar.ErrorCount())

	require.Len(t, svc.configs, 1)
	assert.Equal(t, []domain.PhraseRule{domain.Include("TODO")}, svc.configs[0].Rules)

	view := v.View()
	assert.Contains(t, view, "TODO one")
	assert.Contains(t, view, "ERROR: Cannot read /docs/b.md: permission denied")
	assert.Contains(t, view, "Search complete. Found 2 matches.")
}

func TestView_StreamClosedWithoutSummary(t *testing.T) {
	session := newMockSession("s1", false, domain.MatchEvent{Path: "/a.txt", Line: 1, Excerpt: "x"})
	session.summary.Completed = false
	v := newTestView(&mockSearchService{sessions: []*mockSession{session}})

	_, cmd := v.Update(keyEnter)
	v = drive(v, cmd)

	summary, ok := v.Summary()
	require.True(t, ok)
	assert.False(t, summary.Completed)
	assert.Equal(t, status.StateCancelled, v.StatusState())
	assert.False(t, v.Running())
}

func TestView_StartError(t *testing.T) {
	startErr := errors.New("root path is required")
	v := newTestView(&mockSearchService{err: startErr})

	_, cmd := v.Update(keyEnter)
	v = drive(v, cmd)

	assert.ErrorIs(t, v.Err(), startErr)
	assert.Equal(t, status.StateError, v.StatusState())
	assert.False(t, v.Running())
	assert.Contains(t, v.View(), "root path is required")
}

func TestView_NoSearchService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(120, 40)

	_, cmd := v.Update(keyEnter)

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), ErrNoSearchService)
}

func TestView_EscIdleGoesBack(t *testing.T) {
	v := newTestView(&mockSearchService{})

	_, cmd := v.Update(keyEsc)

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EscCancelsRunningSession(t *testing.T) {
	session := newMockSession("s1", true, domain.MatchEvent{Path: "/a.txt", Line: 1, Excerpt: "x"})
	v := newTestView(&mockSearchService{sessions: []*mockSession{session}})

	_, cmd := v.Update(keyEnter)
	v, _ = v.Update(cmd())
	require.Equal(t, session, v.Session())

	v, cmd = v.Update(keyEsc)

	assert.Nil(t, cmd)
	assert.True(t, session.cancelled.Load())
	assert.Equal(t, status.StateCancelling, v.StatusState())
}

func TestView_StopWhileStarting(t *testing.T) {
	session := newMockSession("s1", true)
	v := newTestView(&mockSearchService{sessions: []*mockSession{session}})

	_, cmd := v.Update(keyEnter)
	v.Stop()
	assert.Equal(t, status.StateCancelling, v.StatusState())

	v, _ = v.Update(cmd())

	assert.True(t, session.cancelled.Load())
}

func TestView_NewSearchReplacesRunningSession(t *testing.T) {
	first := newMockSession("s1", true, domain.MatchEvent{Path: "/old.txt", Line: 1, Excerpt: "old"})
	second := newMockSession("s2", true, domain.MatchEvent{Path: "/new.txt", Line: 1, Excerpt: "new"})
	svc := &mockSearchService{sessions: []*mockSession{first, second}}
	v := newTestView(svc)

	_, cmd := v.Update(keyEnter)
	v, _ = v.Update(cmd())
	require.Equal(t, first, v.Session())

	v, cmd = v.Update(keyEnter)
	assert.Nil(t, v.Session())
	msg := cmd()

	assert.True(t, first.cancelled.Load())
	assert.True(t, first.waited.Load())

	v, _ = v.Update(messages.SearchEvent{SessionID: "s1", Event: domain.MatchEvent{Path: "/stale.txt"}})
	assert.Empty(t, v.Events())

	v, cmd = v.Update(msg)
	v = drive(v, cmd)

	require.Len(t, v.Events(), 1)
	assert.Equal(t, "/new.txt", v.Events()[0].(domain.MatchEvent).Path)
	assert.Len(t, svc.configs, 2)
}

func TestView_IgnoresSecondStartWhileStarting(t *testing.T) {
	svc := &mockSearchService{}
	v := newTestView(svc)

	_, first := v.Update(keyEnter)
	_, second := v.Update(keyEnter)

	assert.NotNil(t, first)
	assert.Nil(t, second)
}

func TestView_StaleFinishedIgnored(t *testing.T) {
	v := newTestView(&mockSearchService{})

	v, cmd := v.Update(messages.SearchFinished{SessionID: "other", Summary: domain.SessionSummary{MatchCount: 9}})

	assert.Nil(t, cmd)
	_, ok := v.Summary()
	assert.False(t, ok)
}

func TestView_RerunRequested(t *testing.T) {
	svc := &mockSearchService{}
	v := newTestView(svc)
	cfg := domain.SearchConfig{
		RootPath:    "/notes",
		Extensions:  domain.ExtensionSet{".txt"},
		Rules:       []domain.PhraseRule{domain.Include("x")},
		Granularity: domain.GranularityWholeFile,
	}

	_, cmd := v.Update(messages.RerunRequested{Config: cfg})
	v = drive(v, cmd)

	require.Len(t, svc.configs, 1)
	assert.Equal(t, cfg, svc.configs[0])
}

func TestView_SetConfigRoundTrip(t *testing.T) {
	v := newTestView(&mockSearchService{})
	cfg := domain.SearchConfig{
		RootPath:    "/src",
		Extensions:  domain.ExtensionSet{".py", ".go", ".rs"},
		Rules:       []domain.PhraseRule{domain.Include("func"), domain.Exclude("test")},
		Granularity: domain.GranularityWholeFile,
	}

	v.SetConfig(cfg)

	assert.Equal(t, cfg, v.Config())
	assert.Equal(t, ".go, .rs", v.form.custom.Value())
	assert.Equal(t, "- exclude", v.form.phrases[1].Label())
}

func TestView_SetConfigKeepsPathWhenEmpty(t *testing.T) {
	v := newTestView(&mockSearchService{})

	v.SetConfig(domain.SearchConfig{Extensions: domain.ExtensionSet{".md"}})

	assert.Equal(t, ".", v.Config().RootPath)
	assert.Empty(t, v.Config().Rules)
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newTestView(&mockSearchService{})

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, status.StateError, v.StatusState())
}

func TestView_ViewNotReady(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.Equal(t, "Initialising...", v.View())
}

func TestView_ViewRendersForm(t *testing.T) {
	v := newTestView(&mockSearchService{})

	view := v.View()

	assert.Contains(t, view, "seek")
	assert.Contains(t, view, "[x] .md")
	assert.Contains(t, view, "[ ] .html")
	assert.Contains(t, view, "+ include")
	assert.Contains(t, view, "Start search")
	assert.Contains(t, view, "whole file")
	assert.Contains(t, view, "No results")
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, cmd := v.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Nil(t, cmd)
	assert.True(t, v.Ready())
	assert.Equal(t, 100, v.Width())
	assert.Equal(t, 50, v.Height())
	assert.Equal(t, 50-formHeight-3, v.list.Height())
}

func TestView_SmallWindowKeepsResultRows(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.SetDimensions(60, 10)

	assert.Equal(t, 3, v.list.Height())
}
