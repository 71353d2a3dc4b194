// tools_convert.go implements the MCP tool for tractogram conversion.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maharshi-gor/tractome/internal/log"
	"github.com/maharshi-gor/tractome/internal/paths"
	"github.com/maharshi-gor/tractome/internal/tractogram"
)

// convertTractogram handles tractome_convert tool calls.
func (h *handlers) convertTractogram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError("input is required"), nil //nolint:nilerr
	}
	output, err := req.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError("output is required"), nil //nolint:nilerr
	}
	refPath := getString(req, "reference", "")

	var ref *tractogram.Reference
	if refPath != "" {
		ref, err = tractogram.LoadReference(refPath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	t, err := tractogram.Load(input, ref)
	if err == nil {
		err = tractogram.Save(t, output)
	}

	entry := log.Event("mcp:convert", "convert").Path(input).Resolved(output).Format(paths.Ext(output))
	if err == nil {
		entry = entry.Count(len(t.Streamlines))
	}
	entry.Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"input":       input,
		"output":      output,
		"streamlines": len(t.Streamlines),
	})
}
