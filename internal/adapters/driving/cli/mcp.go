package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/seek/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
files through the search_files tool and read the search history.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead, e.g. for the MCP Inspector.

Examples:
  # Stdio mode (default)
  seek mcp serve

  # HTTP mode
  seek mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "seek": {
        "command": "/path/to/seek",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search:   searchService,
		History:  historyService,
		Settings: settingsService,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err != nil {
			return fmt.Errorf("listen on port %d: %w", port, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", ln.Addr())
		return server.Serve(cmd.Context(), ln)
	}

	return server.Run(cmd.Context())
}
