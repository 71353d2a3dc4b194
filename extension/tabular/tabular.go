// Package tabular provides the CSV ingestion extension.
// Registers commands: csv, merge.
//
// CSV point data is how external analyses (clustering results, seed
// coordinates, embeddings) enter the viewer, so these commands accept
// both single files and whole directories.

package tabular

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the tabular extension.
type Extension struct{}

var _ extension.Extension = (*Extension)(nil)

// Name returns "tabular" - this extension handles CSV point data.
func (e *Extension) Name() string { return "tabular" }

// Commands returns the CSV ingestion commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newCSVCmd(),
		e.newMergeCmd(),
	}
}

// MCPTools exposes merge to LLM clients. The read-side equivalent
// (tractome_csv) is registered directly by the MCP server.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{
		{
			Tool: mcp.NewTool("tractome_csv_merge",
				mcp.WithDescription("Merge a directory of CSV point files into a single CSV file"),
				mcp.WithString("target", mcp.Required(), mcp.Description("CSV file or directory path")),
				mcp.WithString("output", mcp.Required(), mcp.Description("Output CSV path")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				target, err := req.RequireString("target")
				if err != nil {
					return mcp.NewToolResultError("target is required"), nil //nolint:nilerr
				}
				output, err := req.RequireString("output")
				if err != nil {
					return mcp.NewToolResultError("output is required"), nil //nolint:nilerr
				}
				rows, err := merge(target, output)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText(mergeSummary(target, output, rows)), nil
			},
		},
	}
}
