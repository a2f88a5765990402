package driven

// ContentReader reads candidate files as text.
// Decoding is best effort: undecodable bytes become U+FFFD.
type ContentReader interface {
	// ReadFile returns the whole decoded content of path.
	ReadFile(path string) (string, error)

	// ScanLines calls fn for each line of path in order with its 1-based number.
	// The line excludes its terminator. Scanning stops early when fn returns false.
	ScanLines(path string, fn func(line int, text string) bool) error
}
