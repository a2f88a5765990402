package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// defaultMaxResults caps the matches returned when the caller sets no limit.
const defaultMaxResults = 100

// SearchInput is the input schema for the search_files tool.
type SearchInput struct {
	Root       string   `json:"root" jsonschema:"directory or file to search"`
	Extensions []string `json:"extensions,omitempty" jsonschema:"file extensions such as .md or .txt; .* searches every file"`
	Include    []string `json:"include,omitempty" jsonschema:"phrases that must all be present (case-sensitive)"`
	Exclude    []string `json:"exclude,omitempty" jsonschema:"phrases that must all be absent (case-sensitive)"`
	WholeFile  bool     `json:"whole_file,omitempty" jsonschema:"match whole files instead of single lines"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of matches to return (default 100)"`
}

// SearchOutput is the output schema for the search_files tool.
type SearchOutput struct {
	Matches   []domain.MatchEvent   `json:"matches"`
	Errors    []domain.ErrorEvent   `json:"errors"`
	Summary   domain.SessionSummary `json:"summary"`
	Truncated bool                  `json:"truncated"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_files",
		Description: "Search file contents below a directory for lines or files containing phrases",
	}, s.handleSearch)
}

// handleSearch handles the search_files tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	cfg, err := s.searchConfig(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	limit := input.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	session, err := s.ports.Search.Start(ctx, cfg)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Matches: []domain.MatchEvent{},
		Errors:  []domain.ErrorEvent{},
	}
	summarised := false
	for ev := range session.Events() {
		switch e := ev.(type) {
		case domain.MatchEvent:
			if len(output.Matches) >= limit {
				continue
			}
			output.Matches = append(output.Matches, e)
			if len(output.Matches) == limit {
				output.Truncated = true
				session.Cancel()
			}
		case domain.ErrorEvent:
			output.Errors = append(output.Errors, e)
		case domain.SessionSummary:
			output.Summary = e
			summarised = true
		}
	}
	if !summarised {
		<-session.Done()
		output.Summary, _ = session.Summary()
	}
	if output.Summary.Completed {
		output.Truncated = false
	}

	return nil, output, nil
}

func (s *Server) searchConfig(input SearchInput) (domain.SearchConfig, error) {
	defaults := domain.DefaultAppSettings()
	settings := &defaults
	if s.ports.Settings != nil {
		stored, err := s.ports.Settings.Get()
		if err != nil {
			return domain.SearchConfig{}, fmt.Errorf("getting settings: %w", err)
		}
		settings = stored
	}

	exts := settings.Search.Extensions
	if len(input.Extensions) > 0 {
		exts = domain.NewExtensionSet(input.Extensions...)
	}

	granularity := domain.GranularityLine
	if input.WholeFile {
		granularity = domain.GranularityWholeFile
	}

	return domain.SearchConfig{
		RootPath:    input.Root,
		Extensions:  exts,
		Rules:       domain.Rules(input.Include, input.Exclude),
		Granularity: granularity,
	}, nil
}
