// convert.go implements the "tractome convert" command.
//
// Separated from tractogram.go to isolate conversion flag handling.
// Conversion always round-trips through world (RASMM) coordinates, so any
// supported format can be written from any other as long as a spatial
// reference is available.

package tractogram

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/cmd"
	"github.com/maharshi-gor/tractome/extension"
	"github.com/maharshi-gor/tractome/internal/log"
	"github.com/maharshi-gor/tractome/internal/paths"
	"github.com/maharshi-gor/tractome/internal/progress"
	"github.com/maharshi-gor/tractome/internal/tractogram"
)

func (e *Extension) newConvertCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a tractogram between formats",
		Long: `Convert a tractogram between .trk, .tck, and .trx formats.
The output extension selects the target format.

Examples:
  tractome convert bundle.trk bundle.trx
  tractome convert bundle.tck bundle.trk -r t1.nii.gz   # .tck needs a reference`,
		Args: cobra.ExactArgs(2),
		RunE: e.runConvert,
	}
	c.Flags().StringP(extension.FlagReference, "r", "", "NIfTI reference volume (required for .tck input)")
	return c
}

func (e *Extension) runConvert(c *cobra.Command, args []string) error {
	refPath, _ := c.Flags().GetString(extension.FlagReference)
	input, output := args[0], args[1]

	var ref *tractogram.Reference
	if refPath != "" {
		r, err := tractogram.LoadReference(refPath)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("loading reference %q: %w", refPath, err))
		}
		ref = r
	}

	// Large tractograms can take a while to decode and re-encode
	spin := progress.NewSpinner(fmt.Sprintf("Converting %s", input))
	t, err := tractogram.Load(input, ref)
	if err == nil {
		err = tractogram.Save(t, output)
	}
	spin.Stop()

	entry := log.Event("tractogram:convert", "convert").
		Path(input).
		Resolved(output).
		Format(paths.Ext(output))
	if err == nil {
		entry = entry.Count(len(t.Streamlines))
	}
	entry.Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("convert %q: %w", input, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"input":       input,
			"output":      output,
			"streamlines": len(t.Streamlines),
		})
	}
	if !cmd.Quiet() {
		fmt.Fprintf(cmd.Out(), "%s -> %s (%d streamlines)\n", input, output, len(t.Streamlines))
	}
	return nil
}
