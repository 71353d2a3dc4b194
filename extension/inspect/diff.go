// diff.go implements the "tractome diff" command for comparing two files.
//
// Separated from inspect.go to isolate diff output handling. Output uses
// unified diff format over the rendered metadata summaries, with ANSI
// colour when writing to a terminal.

package inspect

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maharshi-gor/tractome/cmd"
	"github.com/maharshi-gor/tractome/extension"
	"github.com/maharshi-gor/tractome/internal/inspect"
	"github.com/maharshi-gor/tractome/internal/log"
)

func (e *Extension) newDiffCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "diff <path1> <path2>",
		Short: "Compare the metadata of two data files",
		Long: `Compare the metadata summaries of two data files.

Examples:
  tractome diff bundle_a.trk bundle_b.trk
  tractome diff scan_a.nii.gz scan_b.nii.gz
  tractome diff bundle.trk bundle.trx`,
		Args: cobra.ExactArgs(2),
		RunE: e.runDiff,
	}
	c.Flags().StringP(extension.FlagReference, "r", "", "NIfTI reference volume (required for .tck)")
	c.Flags().Bool(extension.FlagNoColour, false, "Output without colour")
	return c
}

func (e *Extension) runDiff(c *cobra.Command, args []string) error {
	ref, _ := c.Flags().GetString(extension.FlagReference)
	noColour, _ := c.Flags().GetBool(extension.FlagNoColour)

	r, err := inspect.Compare(args[0], args[1], ref)

	log.Event("inspect:diff", "diff").Path(args[0]).Resolved(args[1]).Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("diff: %w", err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"old":     r.Old,
			"new":     r.New,
			"changed": r.Changed(),
			"diff":    r.Format(false),
		})
	}

	colour := !noColour && term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Fprint(cmd.Out(), r.Format(colour))
	return nil
}
