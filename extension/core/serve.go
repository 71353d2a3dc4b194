// serve.go implements the "tractome serve" command for MCP server operation.
//
// Separated from extension.go because serve has unique lifecycle
// requirements. Unlike other commands that run and exit, serve blocks
// indefinitely handling MCP requests over stdio.

package core

import (
	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

Exposes file inspection and conversion tools: tractome_info, tractome_csv,
tractome_convert, tractome_diff, and tractome_guide.`,
		RunE: runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	return mcp.Serve()
}
