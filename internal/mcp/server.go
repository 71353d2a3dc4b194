// Package mcp implements the Model Context Protocol server, exposing
// tractome file inspection and conversion to LLMs. This enables AI
// assistants to examine tractograms, volumes, meshes, and CSV point sets
// through a standardised protocol.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maharshi-gor/tractome/extension"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// Serve starts the MCP server over stdio, enabling LLM integration.
// Uses stdio transport for compatibility with Claude Desktop and other
// MCP clients.
func Serve() error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{}

	s := server.NewMCPServer(
		"tractome",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	registerResources(s, h)
	registerTools(s, h)

	slog.Info("tractome MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// handlers provides MCP request handlers. All tools operate directly on
// the filesystem, so no shared state is needed beyond the struct itself.
type handlers struct{}

// registerTools exposes tractome operations as MCP tools for LLM invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	// Info - summarise any supported file
	s.AddTool(
		mcp.NewTool("tractome_info",
			mcp.WithDescription("Summarise a neuroimaging data file: tractogram (.trk/.tck/.trx), NIfTI volume (.nii/.nii.gz), surface mesh (.obj/.ply/.stl), or CSV point set"),
			mcp.WithString("path", mcp.Required(), mcp.Description("File or directory path")),
			mcp.WithString("reference", mcp.Description("NIfTI reference volume (required for .tck files)")),
			mcp.WithString("texture", mcp.Description("Texture image to attach to mesh files")),
		),
		h.fileInfo,
	)

	// CSV - ingest tabular point data
	s.AddTool(
		mcp.NewTool("tractome_csv",
			mcp.WithDescription("Read CSV point data from a file or a directory of CSV files, returning coordinate bounds and a sample of rows"),
			mcp.WithString("target", mcp.Required(), mcp.Description("CSV file or directory path")),
			mcp.WithString("delimiter", mcp.Description("Field delimiter (default: ',')")),
			mcp.WithBoolean("header", mcp.Description("Whether files carry a header row (default: true)")),
			mcp.WithString("encoding", mcp.Description("Text encoding (default: utf-8)")),
			mcp.WithNumber("sample", mcp.Description("Number of sample rows to return (default: 5)")),
		),
		h.readCSV,
	)

	// Convert - tractogram format conversion
	s.AddTool(
		mcp.NewTool("tractome_convert",
			mcp.WithDescription("Convert a tractogram between .trk, .tck, and .trx formats"),
			mcp.WithString("input", mcp.Required(), mcp.Description("Input tractogram path")),
			mcp.WithString("output", mcp.Required(), mcp.Description("Output tractogram path (extension selects the format)")),
			mcp.WithString("reference", mcp.Description("NIfTI reference volume (required when the input is .tck)")),
		),
		h.convertTractogram,
	)

	// Diff - compare two file summaries
	s.AddTool(
		mcp.NewTool("tractome_diff",
			mcp.WithDescription("Compare the metadata summaries of two data files"),
			mcp.WithString("path1", mcp.Required(), mcp.Description("First file path")),
			mcp.WithString("path2", mcp.Required(), mcp.Description("Second file path")),
			mcp.WithString("reference", mcp.Description("NIfTI reference volume (required for .tck files)")),
		),
		h.diffFiles,
	)

	// Guide
	s.AddTool(
		mcp.NewTool("tractome_guide",
			mcp.WithDescription("Get tractome documentation. Call without topic for the overview, or specify a topic like 'formats' or 'csv'."),
			mcp.WithString("topic", mcp.Description("Guide topic (empty for overview)")),
		),
		h.getGuide,
	)

	// Extension-provided tools
	for _, ext := range extension.All() {
		for _, t := range ext.MCPTools() {
			s.AddTool(t.Tool, server.ToolHandlerFunc(t.Handler))
		}
	}
}
