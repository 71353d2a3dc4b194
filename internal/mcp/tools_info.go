// tools_info.go implements the MCP tool for summarising data files.
//
// Info lets LLMs inspect a file before deciding how to use it: streamline
// counts, volume dimensions, mesh sizes, or CSV row counts.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maharshi-gor/tractome/internal/inspect"
	"github.com/maharshi-gor/tractome/internal/log"
)

// fileInfo handles tractome_info tool calls.
func (h *handlers) fileInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	ref := getString(req, "reference", "")
	texture := getString(req, "texture", "")

	info, err := inspect.Summarise(path, ref, texture)

	log.Event("mcp:info", "read").Path(path).Format(info.Format).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(info)
}
