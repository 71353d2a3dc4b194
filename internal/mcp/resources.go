// resources.go implements MCP resource handlers for guide access.
//
// MCP resources provide read-only access to documentation via URI schemes,
// enabling LLM clients to load help content without invoking a tool.
//
// Resource URIs follow the pattern tractome://guide/{topic}.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maharshi-gor/tractome/guide"
)

// ErrInvalidURI indicates a malformed resource URI, helping clients
// debug URI construction issues.
var ErrInvalidURI = errors.New("invalid URI")

// registerResources adds URI-based resource access for guide pages.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"tractome://guide/{topic}",
			"Guide",
			mcp.WithTemplateDescription("Read a tractome guide page by topic"),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		h.readGuideResource,
	)
}

// readGuideResource reads a guide page and returns it as resource contents.
func (h *handlers) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI

	const prefix = "tractome://guide/"
	if !strings.HasPrefix(uri, prefix) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	topic := strings.TrimPrefix(uri, prefix)

	content, err := guide.Get(topic)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     content,
		},
	}, nil
}
