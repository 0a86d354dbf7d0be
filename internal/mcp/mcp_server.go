// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/footprint/internal/contract"
)

// NewMCPServer initializes and configures the footprint MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.RevisionClient, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Footprint Resource Profiler",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	// --- 1. Tool: profile_repository ---
	s.AddTool(mcp.NewTool("profile_repository",
		mcp.WithDescription("Estimate memory, CPU and bandwidth needs of a repository and recommend deployment sizing."),
		mcp.WithString("repo_path", mcp.Description("Path to the repository (defaults to the server's repository).")),
		mcp.WithString("repo_id", mcp.Description("Override the repository identity used for history.")),
		mcp.WithBoolean("dry_run", mcp.Description("Detect changes without storing the analysis.")),
	), h.handleProfileRepository)

	// --- 2. Tool: estimate_file ---
	s.AddTool(mcp.NewTool("estimate_file",
		mcp.WithDescription("Estimate the resource footprint of a single source file."),
		mcp.WithString("path", mcp.Description("File path, absolute or relative to the repository."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the repository.")),
	), h.handleEstimateFile)

	// --- 3. Tool: compare_repository ---
	s.AddTool(mcp.NewTool("compare_repository",
		mcp.WithDescription("Profile a repository and compare it with its latest stored analysis without storing anything."),
		mcp.WithString("repo_path", mcp.Description("Path to the repository.")),
		mcp.WithString("repo_id", mcp.Description("Override the repository identity used for history.")),
	), h.handleCompareRepository)

	// --- 4. Tool: get_change_log ---
	s.AddTool(mcp.NewTool("get_change_log",
		mcp.WithDescription("List recorded resource changes of a repository, newest first."),
		mcp.WithString("repo_path", mcp.Description("Path to the repository.")),
		mcp.WithString("repo_id", mcp.Description("Override the repository identity used for history.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries to return.")),
	), h.handleGetChangeLog)

	return s
}

// StartMCPServer starts the footprint MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.RevisionClient, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, client, mgr)
	return server.ServeStdio(s)
}
