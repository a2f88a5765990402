// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/seek/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/seek/internal/core/domain"
)

// ResultList is the results pane: match and error lines in arrival order
// followed by the summary line. It keeps the newest line visible until
// the user scrolls up.
type ResultList struct {
	events  []domain.Event
	summary *domain.SessionSummary
	offset  int
	follow  bool
	styles  *styles.Styles
	width   int
	height  int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		follow: true,
		styles: s,
		width:  80,
		height: 10,
	}
}

// Append adds a match or error event.
func (r *ResultList) Append(ev domain.Event) {
	r.events = append(r.events, ev)
	if r.follow {
		r.offset = r.maxOffset()
	}
}

// SetSummary sets the closing summary line.
func (r *ResultList) SetSummary(summary domain.SessionSummary) {
	r.summary = &summary
	if r.follow {
		r.offset = r.maxOffset()
	}
}

// Clear removes every line.
func (r *ResultList) Clear() {
	r.events = nil
	r.summary = nil
	r.offset = 0
	r.follow = true
}

// View renders the visible lines.
func (r *ResultList) View() string {
	lines := r.lines()
	if len(lines) == 0 {
		return r.styles.Muted.Render("No results")
	}

	end := r.offset + r.height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[r.offset:end], "\n")
}

func (r *ResultList) lines() []string {
	lines := make([]string, 0, len(r.events)+1)
	for _, ev := range r.events {
		lines = append(lines, r.renderEvent(ev))
	}
	if r.summary != nil {
		lines = append(lines, r.styles.Subtitle.Render(SummaryText(*r.summary)))
	}
	return lines
}

func (r *ResultList) renderEvent(ev domain.Event) string {
	switch e := ev.(type) {
	case domain.MatchEvent:
		if e.HasLine() {
			prefix := r.styles.Path.Render(e.Path) + ":" + r.styles.LineNo.Render(fmt.Sprint(e.Line)) + ": "
			return prefix + r.truncate(e.Excerpt, r.width-lipgloss.Width(prefix))
		}
		return "MATCH: " + r.styles.Path.Render(e.Path)
	case domain.ErrorEvent:
		return r.styles.Error.Render(r.truncate(fmt.Sprintf("ERROR: Cannot read %s: %s", e.Path, e.Message), r.width))
	default:
		return ""
	}
}

// truncate shortens s to n cells.
func (r *ResultList) truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SummaryText is the closing line of a search.
func SummaryText(s domain.SessionSummary) string {
	if !s.Completed {
		return fmt.Sprintf("Search cancelled. Found %d matches.", s.MatchCount)
	}
	return fmt.Sprintf("Search complete. Found %d matches.", s.MatchCount)
}

// ScrollUp moves the view up by n lines and stops following new lines.
func (r *ResultList) ScrollUp(n int) {
	r.offset -= n
	if r.offset < 0 {
		r.offset = 0
	}
	r.follow = r.offset >= r.maxOffset()
}

// ScrollDown moves the view down by n lines. Reaching the end resumes following.
func (r *ResultList) ScrollDown(n int) {
	r.offset += n
	if r.offset >= r.maxOffset() {
		r.offset = r.maxOffset()
		r.follow = true
	}
}

func (r *ResultList) maxOffset() int {
	total := len(r.events)
	if r.summary != nil {
		total++
	}
	if total <= r.height {
		return 0
	}
	return total - r.height
}

// Events returns the match and error events shown.
func (r *ResultList) Events() []domain.Event {
	return r.events
}

// Summary returns the summary, if set.
func (r *ResultList) Summary() (domain.SessionSummary, bool) {
	if r.summary == nil {
		return domain.SessionSummary{}, false
	}
	return *r.summary, true
}

// Offset returns the first visible line.
func (r *ResultList) Offset() int {
	return r.offset
}

// Following reports whether new lines scroll into view.
func (r *ResultList) Following() bool {
	return r.follow
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	if height < 1 {
		height = 1
	}
	r.height = height
	if r.follow || r.offset > r.maxOffset() {
		r.offset = r.maxOffset()
	}
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of match and error lines.
func (r *ResultList) Count() int {
	return len(r.events)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.events) == 0 && r.summary == nil
}
