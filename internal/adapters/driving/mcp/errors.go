// Package mcp provides an MCP (Model Context Protocol) server adapter for seek.
// It lets AI assistants search local files and read the search history.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
