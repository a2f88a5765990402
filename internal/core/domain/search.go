package domain

import (
	"fmt"
	"strings"
)

// WildcardExtension matches every file name when present in an ExtensionSet.
const WildcardExtension = ".*"

// ExcerptMaxRunes bounds the excerpt of a whole-file match.
const ExcerptMaxRunes = 200

// ExtensionSet is the set of file-name suffixes a search accepts.
// Entries are compared byte for byte against the end of the file name.
type ExtensionSet []string

// NewExtensionSet builds an ExtensionSet, dropping blank entries and duplicates.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		set = append(set, ext)
	}
	return set
}

// Effective returns the non-blank entries of the set.
func (s ExtensionSet) Effective() ExtensionSet {
	return NewExtensionSet(s...)
}

// HasWildcard reports whether the set contains WildcardExtension.
func (s ExtensionSet) HasWildcard() bool {
	for _, ext := range s {
		if strings.TrimSpace(ext) == WildcardExtension {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set accepts no file at all.
func (s ExtensionSet) IsEmpty() bool {
	return len(s.Effective()) == 0
}

// Matches reports whether filename passes the filter.
// The match is a case-sensitive suffix test: ".md" does not accept "README.MD",
// and an entry without a leading dot such as "md" also accepts "cmd".
// Entries are used as given; normalise with Effective once before walking.
func (s ExtensionSet) Matches(filename string) bool {
	for _, ext := range s {
		if ext == WildcardExtension || (ext != "" && strings.HasSuffix(filename, ext)) {
			return true
		}
	}
	return false
}

// String returns the comma-separated entries.
func (s ExtensionSet) String() string {
	return strings.Join(s.Effective(), ",")
}

// RuleMode selects whether a phrase must or must not occur.
type RuleMode string

const (
	// RuleInclude requires the phrase to occur.
	RuleInclude RuleMode = "include"
	// RuleExclude rejects text containing the phrase.
	RuleExclude RuleMode = "exclude"
)

// IsValid returns true if the mode is a known value.
func (m RuleMode) IsValid() bool {
	switch m {
	case RuleInclude, RuleExclude:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m RuleMode) String() string {
	return string(m)
}

// ParseRuleMode accepts "include", "+", "exclude" and "-".
func ParseRuleMode(s string) (RuleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "include", "+":
		return RuleInclude, nil
	case "exclude", "-":
		return RuleExclude, nil
	default:
		return "", fmt.Errorf("rule mode %q: %w", s, ErrInvalidInput)
	}
}

// PhraseRule is a literal phrase with a mode.
// A rule with empty text never participates in matching.
type PhraseRule struct {
	Text string   `json:"text"`
	Mode RuleMode `json:"mode"`
}

// Include returns an include rule for text.
func Include(text string) PhraseRule {
	return PhraseRule{Text: text, Mode: RuleInclude}
}

// Exclude returns an exclude rule for text.
func Exclude(text string) PhraseRule {
	return PhraseRule{Text: text, Mode: RuleExclude}
}

// Rules builds include rules followed by exclude rules, skipping empty phrases.
func Rules(includes, excludes []string) []PhraseRule {
	rules := make([]PhraseRule, 0, len(includes)+len(excludes))
	for _, text := range includes {
		if text != "" {
			rules = append(rules, Include(text))
		}
	}
	for _, text := range excludes {
		if text != "" {
			rules = append(rules, Exclude(text))
		}
	}
	return rules
}

// IsEmpty reports whether the rule has no text.
func (r PhraseRule) IsEmpty() bool {
	return r.Text == ""
}

// Granularity is the unit a search evaluates phrases against.
type Granularity string

const (
	// GranularityLine evaluates each line on its own.
	GranularityLine Granularity = "line"
	// GranularityWholeFile evaluates the whole decoded content once.
	GranularityWholeFile Granularity = "file"
)

// IsValid returns true if the granularity is a known value.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityLine, GranularityWholeFile:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (g Granularity) String() string {
	return string(g)
}

// Description returns a human-readable description.
func (g Granularity) Description() string {
	switch g {
	case GranularityLine:
		return "Report every matching line"
	case GranularityWholeFile:
		return "Report each file whose whole content matches"
	default:
		return unknownDescription
	}
}

// ParseGranularity accepts "line", "file" and "whole".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "lines":
		return GranularityLine, nil
	case "file", "whole", "whole-file":
		return GranularityWholeFile, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedGranularity)
	}
}

// SearchConfig is the immutable input of one search session.
type SearchConfig struct {
	RootPath    string       `json:"root_path"`
	Extensions  ExtensionSet `json:"extensions"`
	Rules       []PhraseRule `json:"rules"`
	Granularity Granularity  `json:"granularity"`
}

// Validate checks the configuration before a session is started.
// An empty Granularity is treated as GranularityLine.
func (c SearchConfig) Validate() error {
	if strings.TrimSpace(c.RootPath) == "" {
		return fmt.Errorf("root path is required: %w", ErrInvalidInput)
	}
	if c.Extensions.IsEmpty() {
		return fmt.Errorf("at least one file extension is required: %w", ErrInvalidInput)
	}
	if c.Granularity != "" && !c.Granularity.IsValid() {
		return fmt.Errorf("granularity %q: %w", c.Granularity, ErrInvalidInput)
	}
	for _, r := range c.Rules {
		if !r.Mode.IsValid() {
			return fmt.Errorf("rule %q has mode %q: %w", r.Text, r.Mode, ErrInvalidInput)
		}
	}
	return nil
}

// EffectiveGranularity returns the configured granularity or GranularityLine.
func (c SearchConfig) EffectiveGranularity() Granularity {
	if c.Granularity == "" {
		return GranularityLine
	}
	return c.Granularity
}

// WithRoot returns a copy of the configuration rooted at root.
func (c SearchConfig) WithRoot(root string) SearchConfig {
	c.RootPath = root
	c.Extensions = append(ExtensionSet(nil), c.Extensions...)
	c.Rules = append([]PhraseRule(nil), c.Rules...)
	return c
}

// Includes returns the non-empty include phrases in order.
func (c SearchConfig) Includes() []string {
	return phrases(c.Rules, RuleInclude)
}

// Excludes returns the non-empty exclude phrases in order.
func (c SearchConfig) Excludes() []string {
	return phrases(c.Rules, RuleExclude)
}

func phrases(rules []PhraseRule, mode RuleMode) []string {
	var out []string
	for _, r := range rules {
		if r.Mode == mode && !r.IsEmpty() {
			out = append(out, r.Text)
		}
	}
	return out
}

// MatchEvaluator decides whether a line or a whole file matches the rules.
// Matching is a case-sensitive literal substring test.
type MatchEvaluator struct {
	includes []string
	excludes []string
}

// NewMatchEvaluator splits rules into include and exclude phrases,
// dropping rules with empty text.
func NewMatchEvaluator(rules []PhraseRule) *MatchEvaluator {
	return &MatchEvaluator{
		includes: phrases(rules, RuleInclude),
		excludes: phrases(rules, RuleExclude),
	}
}

// Match reports whether every include phrase occurs in text and no exclude phrase does.
// With no rules every text matches.
func (e *MatchEvaluator) Match(text string) bool {
	for _, p := range e.includes {
		if !strings.Contains(text, p) {
			return false
		}
	}
	for _, p := range e.excludes {
		if strings.Contains(text, p) {
			return false
		}
	}
	return true
}

// Excerpt picks the display text for a whole-file match: the first line containing
// the first include phrase, or the first non-blank line when there are no includes.
// The result is trimmed and truncated to ExcerptMaxRunes.
func (e *MatchEvaluator) Excerpt(content string) string {
	var anchor string
	if len(e.includes) > 0 {
		anchor = e.includes[0]
	}
	first := ""
	for _, line := range SplitLines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if anchor == "" || strings.Contains(line, anchor) {
			return truncateRunes(line, ExcerptMaxRunes)
		}
	}
	// A multi-line include phrase never sits on one line.
	return truncateRunes(first, ExcerptMaxRunes)
}

// SplitLines splits text at "\n", "\r\n" and a lone "\r".
// A trailing terminator does not add an empty final line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
