package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codebook/internal/adapters/driving/mcp"
	"github.com/custodia-labs/codebook/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can read the
codebook and code excerpts.

Tools: list_codes, code_tree, co_occurrences, study_statistics, code_excerpt
and suggest_codes. Resources: codebook://studies,
codebook://studies/{studyId}/codes and codebook://documents/{documentId}.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve HTTP instead, for MCP Inspector or remote clients.

Examples:
  # Stdio mode (default, for Claude Desktop)
  codebook mcp serve

  # HTTP mode
  codebook mcp serve --port 8080 --origin http://localhost:6274

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "codebook": {
        "command": "/path/to/codebook",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("origin", "", "Comma-separated origins allowed over HTTP (default any)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	origin, err := cmd.Flags().GetString("origin")
	if err != nil {
		return fmt.Errorf("getting origin flag: %w", err)
	}
	server, err := newMCPServer(origin)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if promptWatcher != nil {
		go func() {
			err := promptWatcher.Watch(ctx, func(name string) {
				logger.Info("prompt %s reloaded", name)
			})
			if err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		if len(server.AllowedOrigins) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Allowed origins: %s\n", strings.Join(server.AllowedOrigins, ", "))
		}
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// newMCPServer builds the server over the configured services. origin is a
// comma-separated list of allowed HTTP origins; empty allows any.
func newMCPServer(origin string) (*mcp.Server, error) {
	if studyService == nil || codingService == nil || analysisService == nil {
		return nil, errors.New("services not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Study:      studyService,
		Coding:     codingService,
		Analysis:   analysisService,
		Document:   documentService,
		Suggestion: suggestionService,
		Research:   researchService,
	})
	if err != nil {
		return nil, err
	}
	server.AllowedOrigins = splitList(origin)
	return server, nil
}
