package search

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/seek/internal/core/domain"
)

// presetExtensions are offered as checkboxes ahead of the custom entry.
var presetExtensions = [...]string{".md", ".txt", ".html", ".py"}

// phraseRows is the number of phrase inputs on the form.
const phraseRows = 5

// Form item indices in focus order.
const (
	itemCustomToggle = len(presetExtensions)
	itemCustomField  = itemCustomToggle + 1
	itemFirstPhrase  = itemCustomField + 1
	itemPath         = itemFirstPhrase + phraseRows
	itemGranularity  = itemPath + 1
	itemStart        = itemGranularity + 1
	itemCount        = itemStart + 1
)

// form holds the search parameters being edited.
type form struct {
	styles *styles.Styles

	// checked has one entry per preset plus the custom toggle.
	checked   [itemCustomToggle + 1]bool
	custom    *input.Field
	phrases   [phraseRows]*input.Field
	modes     [phraseRows]domain.RuleMode
	path      *input.Field
	wholeFile bool
	focus     int
}

func newForm(s *styles.Styles) *form {
	f := &form{
		styles: s,
		custom: input.NewField(s, "Custom", ".go, .rs"),
		path:   input.NewField(s, "Folder", "."),
	}
	f.path.SetValue(".")
	for i := range f.phrases {
		f.modes[i] = domain.RuleInclude
		f.phrases[i] = input.NewField(s, modeLabel(domain.RuleInclude), "phrase")
	}
	f.checked[0] = true
	f.checked[1] = true
	f.focus = itemFirstPhrase
	return f
}

func modeLabel(mode domain.RuleMode) string {
	if mode == domain.RuleExclude {
		return "- exclude"
	}
	return "+ include"
}

// field returns the text field at item i, or nil.
func (f *form) field(i int) *input.Field {
	switch {
	case i == itemCustomField:
		return f.custom
	case i >= itemFirstPhrase && i < itemPath:
		return f.phrases[i-itemFirstPhrase]
	case i == itemPath:
		return f.path
	default:
		return nil
	}
}

// setFocus moves focus to item i.
func (f *form) setFocus(i int) tea.Cmd {
	if fld := f.field(f.focus); fld != nil {
		fld.Blur()
	}
	f.focus = (i + itemCount) % itemCount
	if fld := f.field(f.focus); fld != nil {
		return fld.Focus()
	}
	return nil
}

func (f *form) next() tea.Cmd { return f.setFocus(f.focus + 1) }

func (f *form) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// toggle flips the focused checkbox, phrase mode or granularity.
// It reports false when the focused item has nothing to toggle.
func (f *form) toggle() bool {
	switch {
	case f.focus <= itemCustomToggle:
		f.checked[f.focus] = !f.checked[f.focus]
	case f.focus >= itemFirstPhrase && f.focus < itemPath:
		row := f.focus - itemFirstPhrase
		if f.modes[row] == domain.RuleInclude {
			f.modes[row] = domain.RuleExclude
		} else {
			f.modes[row] = domain.RuleInclude
		}
		f.phrases[row].SetLabel(modeLabel(f.modes[row]))
	case f.focus == itemGranularity:
		f.wholeFile = !f.wholeFile
	default:
		return false
	}
	return true
}

// isToggle reports whether the focused item is a checkbox or the granularity switch.
func (f *form) isToggle() bool {
	return f.focus <= itemCustomToggle || f.focus == itemGranularity
}

// update forwards msg to the focused text field.
func (f *form) update(msg tea.Msg) tea.Cmd {
	fld := f.field(f.focus)
	if fld == nil {
		return nil
	}
	_, cmd := fld.Update(msg)
	return cmd
}

// config builds the search configuration from the form.
func (f *form) config() domain.SearchConfig {
	exts := make([]string, 0, len(presetExtensions)+1)
	for i, ext := range presetExtensions {
		if f.checked[i] {
			exts = append(exts, ext)
		}
	}
	if f.checked[itemCustomToggle] {
		exts = append(exts, splitList(f.custom.Value())...)
	}

	var rules []domain.PhraseRule
	for i, fld := range f.phrases {
		if fld.Value() == "" {
			continue
		}
		rules = append(rules, domain.PhraseRule{Text: fld.Value(), Mode: f.modes[i]})
	}

	granularity := domain.GranularityLine
	if f.wholeFile {
		granularity = domain.GranularityWholeFile
	}

	return domain.SearchConfig{
		RootPath:    strings.TrimSpace(f.path.Value()),
		Extensions:  domain.NewExtensionSet(exts...),
		Rules:       rules,
		Granularity: granularity,
	}
}

// apply loads cfg into the form. Rules beyond the phrase rows are dropped.
func (f *form) apply(cfg domain.SearchConfig) {
	for i := range f.checked {
		f.checked[i] = false
	}
	var custom []string
	for _, ext := range cfg.Extensions.Effective() {
		if i := presetIndex(ext); i >= 0 {
			f.checked[i] = true
			continue
		}
		custom = append(custom, ext)
	}
	f.checked[itemCustomToggle] = len(custom) > 0
	f.custom.SetValue(strings.Join(custom, ", "))

	for i, fld := range f.phrases {
		fld.SetValue("")
		f.modes[i] = domain.RuleInclude
		if i < len(cfg.Rules) {
			fld.SetValue(cfg.Rules[i].Text)
			f.modes[i] = cfg.Rules[i].Mode
		}
		fld.SetLabel(modeLabel(f.modes[i]))
	}

	if cfg.RootPath != "" {
		f.path.SetValue(cfg.RootPath)
	}
	f.wholeFile = cfg.EffectiveGranularity() == domain.GranularityWholeFile
}

func presetIndex(ext string) int {
	for i, p := range presetExtensions {
		if p == ext {
			return i
		}
	}
	return -1
}

// splitList splits a comma or space separated list.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func (f *form) setWidth(width int) {
	f.custom.SetWidth(width)
	f.path.SetWidth(width)
	for _, fld := range f.phrases {
		fld.SetWidth(width)
	}
}

func (f *form) view() string {
	lines := make([]string, 0, itemCount)

	boxes := make([]string, 0, len(f.checked))
	for i := range f.checked {
		label := "custom"
		if i < len(presetExtensions) {
			label = presetExtensions[i]
		}
		boxes = append(boxes, f.item(i, checkbox(f.checked[i])+" "+label))
	}
	lines = append(lines,
		f.styles.Muted.Render(padRight("Extensions", 12))+strings.Join(boxes, "  "),
		f.custom.View(),
		"",
		f.styles.Subtitle.Render("Phrases")+f.styles.Muted.Render("  (ctrl+t switches include/exclude)"),
	)
	for _, fld := range f.phrases {
		lines = append(lines, fld.View())
	}

	lines = append(lines,
		"",
		f.path.View(),
		f.styles.Muted.Render(padRight("Match", 12))+
			f.item(itemGranularity, radio(!f.wholeFile)+" lines  "+radio(f.wholeFile)+" whole file"),
		padRight("", 12)+f.item(itemStart, "[ Start search ]"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// item renders s highlighted when item i has focus.
func (f *form) item(i int, s string) string {
	if f.focus == i {
		return f.styles.Focused.Render(s)
	}
	return f.styles.Normal.Render(s)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func radio(on bool) string {
	if on {
		return "(•)"
	}
	return "( )"
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
