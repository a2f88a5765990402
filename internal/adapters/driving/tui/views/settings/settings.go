// Package settings provides the settings editor view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driving"
)

// ErrNoSettingsService is reported when the view has no settings service.
var ErrNoSettingsService = errors.New("settings service not available")

// resetKey is the SettingsSaved key used when every setting was restored.
const resetKey = "*"

// row is one editable setting.
type row struct {
	key   string
	label string
	value func(*domain.AppSettings) string
}

var rows = []row{
	{"search.extensions", "Extensions", func(s *domain.AppSettings) string {
		return s.Search.Extensions.String()
	}},
	{"search.granularity", "Granularity", func(s *domain.AppSettings) string {
		return s.Search.Granularity.String()
	}},
	{"search.event_buffer", "Event buffer", func(s *domain.AppSettings) string {
		return fmt.Sprint(s.Search.EventBuffer)
	}},
	{"history.enabled", "History", func(s *domain.AppSettings) string {
		return fmt.Sprint(s.History.Enabled)
	}},
	{"history.retention", "Retention", func(s *domain.AppSettings) string {
		return fmt.Sprint(s.History.Retention)
	}},
	{"watch.min_interval_ms", "Watch interval", func(s *domain.AppSettings) string {
		return fmt.Sprint(s.Watch.MinIntervalMs)
	}},
}

// View lists the settings and edits one value at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error
	message  string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           input,
	}
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) saveValue(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Key: key, Err: svc.Set(key, value)}
	}
}

func (v *View) resetDefaults() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: resetKey, Err: ErrNoSettingsService}
		}
		defaults := svc.GetDefaults()
		return messages.SettingsSaved{Key: resetKey, Err: svc.Save(&defaults)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		v.err = nil
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Key == resetKey {
			v.message = "Settings restored to defaults"
		} else {
			v.message = "Saved " + msg.Key
		}
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
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
	case "down", "j":
		if v.selected < len(rows)-1 {
			v.selected++
		}
	case "enter":
		if v.settings == nil {
			return v, nil
		}
		v.editing = true
		v.message = ""
		v.input.SetValue(rows[v.selected].value(v.settings))
		v.input.CursorEnd()
		return v, v.input.Focus()
	case "r":
		v.message = ""
		return v, v.resetDefaults()
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.stopEditing()
		return v, nil
	case "enter":
		value := v.input.Value()
		v.stopEditing()
		return v, v.saveValue(rows[v.selected].key, value)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) stopEditing() {
	v.editing = false
	v.input.Blur()
	v.input.Reset()
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}

	for i, r := range rows {
		label := fmt.Sprintf("%-16s", r.label)
		value := r.value(v.settings)
		if i == v.selected {
			b.WriteString("> " + v.styles.Focused.Render(label))
			if v.editing {
				b.WriteString(v.input.View())
			} else {
				b.WriteString(v.styles.Normal.Render(value))
			}
			b.WriteString(v.styles.Muted.Render("  " + r.key))
		} else {
			b.WriteString("  " + v.styles.Muted.Render(label) + v.styles.Normal.Render(value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.message != "":
		b.WriteString(v.styles.Success.Render(v.message))
	}
	b.WriteString("\n\n")

	if v.editing {
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] edit  [r] reset to defaults  [esc] back"))
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset leaves edit mode and clears messages.
func (v *View) Reset() {
	v.stopEditing()
	v.err = nil
	v.message = ""
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Selected returns the selected row.
func (v *View) Selected() int {
	return v.selected
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Message returns the last status message.
func (v *View) Message() string {
	return v.message
}
