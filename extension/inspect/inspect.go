// Package inspect provides the inspect extension.
// Registers commands: info, diff.
//
// These commands summarise and compare data files of any supported format,
// dispatching on file extension so users never need to state the format.

package inspect

import (
	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the inspect extension.
type Extension struct{}

// Compile-time interface compliance. Catches missing methods at build time
// rather than runtime, making interface changes safer to refactor.
var _ extension.Extension = (*Extension)(nil)

// Name returns "inspect" - this extension summarises and compares files.
func (e *Extension) Name() string { return "inspect" }

// Commands returns the file inspection commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newInfoCmd(),
		e.newDiffCmd(),
	}
}

// MCPTools returns nil - the equivalent tools (tractome_info,
// tractome_diff) are registered directly by the MCP server.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
