// info.go implements the "tractome info" command.
//
// Separated from inspect.go to isolate summary rendering and the
// reference-volume flag handling for headerless tractogram formats.

package inspect

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/cmd"
	"github.com/maharshi-gor/tractome/extension"
	"github.com/maharshi-gor/tractome/internal/format"
	"github.com/maharshi-gor/tractome/internal/inspect"
	"github.com/maharshi-gor/tractome/internal/log"
)

func (e *Extension) newInfoCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "info <path>",
		Short: "Summarise a data file",
		Long: `Summarise a tractogram, NIfTI volume, surface mesh, or CSV point set.

Examples:
  tractome info bundle.trk
  tractome info bundle.tck -r t1.nii.gz   # .tck needs a reference volume
  tractome info scan.nii.gz
  tractome info surface.obj
  tractome info points/                   # directory of CSV files`,
		Args: cobra.ExactArgs(1),
		RunE: e.runInfo,
	}
	c.Flags().StringP(extension.FlagReference, "r", "", "NIfTI reference volume (required for .tck)")
	c.Flags().StringP(extension.FlagTexture, "t", "", "Texture image to attach to a mesh")
	return c
}

func (e *Extension) runInfo(c *cobra.Command, args []string) error {
	ref, _ := c.Flags().GetString(extension.FlagReference)
	texture, _ := c.Flags().GetString(extension.FlagTexture)
	path := args[0]

	info, err := inspect.Summarise(path, ref, texture)

	log.Event("inspect:info", "read").Path(path).Format(info.Format).Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("info %q: %w", path, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(info)
	}
	return format.Render(cmd.Out(), info)
}
