// Package filesystem provides the local-disk adapters of the search engine:
//
//   - Enumerator: Lazy, lexically ordered walk yielding candidate files
//   - Reader: Best-effort text decoding of candidate files
//   - Watcher: Recursive change notification built on fsnotify
package filesystem
