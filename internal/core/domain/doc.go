// Package domain defines the core business entities for seek.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchConfig: The immutable input of one search session
//   - PhraseRule: An include or exclude phrase
//   - ExtensionSet: The file-name suffix filter
//   - MatchEvaluator: The include/exclude predicate over a line or a file
//   - Event: MatchEvent, ErrorEvent and the terminal SessionSummary
//   - SearchRecord: A finished session kept in the search history
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
