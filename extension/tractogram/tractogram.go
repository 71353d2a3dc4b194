// Package tractogram provides the tractogram extension.
// Registers commands: convert.

package tractogram

import (
	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the tractogram extension.
type Extension struct{}

var _ extension.Extension = (*Extension)(nil)

// Name returns "tractogram" - this extension handles streamline files.
func (e *Extension) Name() string { return "tractogram" }

// Commands returns the tractogram manipulation commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newConvertCmd(),
	}
}

// MCPTools returns nil - tractome_convert is registered directly by the
// MCP server.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
