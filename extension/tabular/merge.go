// merge.go implements the "tractome merge" command.
//
// Merge concatenates a directory of CSV point files into a single file,
// which keeps downstream tooling simple when an analysis produces one
// file per cluster or per subject.

package tabular

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/cmd"
	"github.com/maharshi-gor/tractome/internal/config"
	"github.com/maharshi-gor/tractome/internal/log"
	"github.com/maharshi-gor/tractome/internal/tabular"
)

func (e *Extension) newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <file-or-directory> <output.csv>",
		Short: "Merge CSV point files into one",
		Long: `Merge CSV point data into a single CSV file.

Reads the target with the configured CSV defaults and writes one file
with an x,y,z header plus attribute columns.

Examples:
  tractome merge results/ all_points.csv`,
		Args: cobra.ExactArgs(2),
		RunE: e.runMerge,
	}
}

func (e *Extension) runMerge(c *cobra.Command, args []string) error {
	target, output := args[0], args[1]

	rows, err := merge(target, output)

	entry := log.Event("tabular:merge", "write").Path(target).Resolved(output).Format("csv")
	if err == nil {
		entry = entry.Count(rows)
	}
	entry.Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("merge %q: %w", target, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"target": target,
			"output": output,
			"rows":   rows,
		})
	}
	if !cmd.Quiet() {
		fmt.Fprint(cmd.Out(), mergeSummary(target, output, rows))
	}
	return nil
}

// merge reads the target with config defaults and writes it as one CSV.
// Returns the number of data rows written.
func merge(target, output string) (int, error) {
	opts := tabular.DefaultOptions()
	if cfg, err := config.Load(); err == nil {
		opts = tabular.Options{
			Delimiter: cfg.Delimiter(),
			HasHeader: cfg.Header(),
			Encoding:  cfg.Encoding(),
		}
	}
	coords, attrs, err := tabular.Read(target, opts)
	if err != nil {
		return 0, err
	}
	if err := tabular.Write(output, coords, attrs, opts); err != nil {
		return 0, err
	}
	return coords.Rows(), nil
}

func mergeSummary(target, output string, rows int) string {
	return fmt.Sprintf("%s -> %s (%d rows)\n", target, output, rows)
}
