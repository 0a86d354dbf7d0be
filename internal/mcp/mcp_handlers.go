package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/footprint/core"
	"github.com/huangsam/footprint/internal/contract"
)

// defaultChangeLogLimit bounds get_change_log when no limit is given.
const defaultChangeLogLimit = 20

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.RevisionClient
	mgr     contract.StoreManager
}

// configFor clones the base configuration and applies the repository arguments.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := strings.TrimSpace(request.GetString("repo_path", "")); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot analyze %q: %w", p, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("repo_path %q must be a directory", p)
		}
		cfg.RepoPath = abs
	}
	if id := strings.TrimSpace(request.GetString("repo_id", "")); id != "" {
		cfg.RepoID = id
	}
	return cfg, nil
}

func (h *toolHandler) handleProfileRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.DryRun = request.GetBool("dry_run", cfg.DryRun)

	result, err := core.RunProfile(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("profile failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleEstimateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(request.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("invalid parameters: path is required"), nil
	}
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	rel, err := contract.NormalizeRepoPath(cfg.RepoPath, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	path = filepath.Join(cfg.RepoPath, filepath.FromSlash(rel))

	result, err := core.RunEstimate(ctx, cfg, h.mgr, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("estimate failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleCompareRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.RunCompare(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr)
	if err != nil {
		if errors.Is(err, core.ErrNoHistory) {
			return mcp.NewToolResultError("comparison failed: no history backend is configured"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetChangeLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	limit := request.GetInt("limit", defaultChangeLogLimit)
	if limit < 1 {
		return mcp.NewToolResultError("invalid parameters: limit must be at least 1"), nil
	}
	if h.mgr == nil || h.mgr.GetRecordStore() == nil {
		return mcp.NewToolResultError("change log unavailable: no history backend is configured"), nil
	}

	repo := core.ResolveRepository(ctx, cfg, h.client)
	entries, err := h.mgr.GetRecordStore().ListChangeLogs(ctx, repo.Identity, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list change logs: %v", err)), nil
	}
	return jsonResult(entries)
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
