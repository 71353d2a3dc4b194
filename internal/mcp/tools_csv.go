// tools_csv.go implements the MCP tool for ingesting CSV point data.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maharshi-gor/tractome/internal/config"
	"github.com/maharshi-gor/tractome/internal/log"
	"github.com/maharshi-gor/tractome/internal/tabular"
)

// readCSV handles tractome_csv tool calls. Config supplies defaults for
// any parsing option the request leaves unset.
func (h *handlers) readCSV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError("target is required"), nil //nolint:nilerr
	}

	cfg, err := config.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := tabular.OptionsFrom(
		getString(req, "delimiter", string(cfg.Delimiter())),
		getBool(req, "header", cfg.Header()),
		getString(req, "encoding", cfg.Encoding()),
	)
	sample := getInt(req, "sample", 5)

	coords, attrs, err := tabular.Read(target, opts)

	entry := log.Event("mcp:csv", "read").Path(target).Format("csv")
	if err == nil {
		entry = entry.Count(coords.Rows())
	}
	entry.Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if sample > coords.Rows() {
		sample = coords.Rows()
	}
	rows := make([][]float64, 0, sample)
	for i := 0; i < sample; i++ {
		row := make([]float64, 0, 3+attrs.Cols())
		row = append(row, coords.Row(i)...)
		if attrs.Cols() > 0 {
			row = append(row, attrs.Row(i)...)
		}
		rows = append(rows, row)
	}

	return jsonResult(map[string]any{
		"rows":              coords.Rows(),
		"attribute_columns": attrs.Cols(),
		"sample":            rows,
	})
}
