// Package core provides the core extension for tractome.
// It registers commands: config, guide, serve, version.
package core

import (
	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct{}

// Compile-time interface compliance. Catches missing methods at build time
// rather than runtime, making interface changes safer to refactor.
var _ extension.Extension = (*Extension)(nil)

// Name returns "core" - this extension provides fundamental tractome commands.
func (e *Extension) Name() string { return "core" }

// Commands returns all core CLI commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newConfigCmd(),
		newGuideCmd(),
		newServeCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil - core commands have no MCP tool equivalents.
// The MCP server registers its own file inspection tools directly.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
