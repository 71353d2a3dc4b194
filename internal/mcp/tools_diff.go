// tools_diff.go implements the MCP tool for comparing two data files.
//
// Diff enables LLMs to understand how two files differ in shape and
// metadata without loading raw contents, supporting dataset review.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maharshi-gor/tractome/internal/inspect"
	"github.com/maharshi-gor/tractome/internal/log"
)

// diffFiles handles tractome_diff tool calls.
func (h *handlers) diffFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path1, err := req.RequireString("path1")
	if err != nil {
		return mcp.NewToolResultError("path1 is required"), nil //nolint:nilerr
	}
	path2, err := req.RequireString("path2")
	if err != nil {
		return mcp.NewToolResultError("path2 is required"), nil //nolint:nilerr
	}
	ref := getString(req, "reference", "")

	r, err := inspect.Compare(path1, path2, ref)

	log.Event("mcp:diff", "diff").Path(path1).Resolved(path2).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"old":     r.Old,
		"new":     r.New,
		"changed": r.Changed(),
		"diff":    r.Format(false),
	})
}
