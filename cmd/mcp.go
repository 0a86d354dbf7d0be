package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/mcp"
)

// mcpCmd starts the Model Context Protocol server on stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start an MCP server exposing footprint as tools.",
	Long: `Start a Model Context Protocol server on stdin/stdout so that assistants can
profile repositories, estimate files, compare against history and read the
change log. The repository path given here is the default for every tool.

Logs are written to stderr; stdout carries protocol messages only.

Examples:
  footprint mcp
  footprint mcp ~/src/shop --provider none`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := mcp.StartMCPServer(rootCtx, cfg, contract.NewLocalGitClient(), storeManager); err != nil {
			contract.LogFatal("MCP server failed", err)
		}
	},
}
