// csv.go implements the "tractome csv" command for CSV ingestion.
//
// Separated from tabular.go to isolate parsing-flag handling. Config
// supplies defaults for any option the flags leave unset, so a lab using
// semicolon-delimited exports can set csv.delimiter once.

package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maharshi-gor/tractome/cmd"
	"github.com/maharshi-gor/tractome/extension"
	"github.com/maharshi-gor/tractome/internal/config"
	"github.com/maharshi-gor/tractome/internal/log"
	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/tabular"
)

func (e *Extension) newCSVCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "csv <file-or-directory>",
		Short: "Read CSV point data",
		Long: `Read point data from a CSV file or a directory of CSV files.

The first three columns are x, y, z coordinates; remaining columns are
per-point attributes. Directory targets concatenate every .csv file in
filename order.

Examples:
  tractome csv points.csv
  tractome csv results/                     # directory of CSV files
  tractome csv data.csv --delimiter ";"
  tractome csv raw.csv --no-header --encoding latin-1`,
		Args: cobra.ExactArgs(1),
		RunE: e.runCSV,
	}
	c.Flags().StringP(extension.FlagDelimiter, "d", "", "Field delimiter (default from config, ',')")
	c.Flags().Bool(extension.FlagNoHeader, false, "Files carry no header row")
	c.Flags().String(extension.FlagEncoding, "", "Text encoding (default from config, utf-8)")
	c.Flags().IntP(extension.FlagSample, "n", 5, "Number of sample rows to print")
	return c
}

// parseOptions merges flag values over config defaults.
func parseOptions(c *cobra.Command) (tabular.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return tabular.Options{}, err
	}

	opts := tabular.Options{
		Delimiter: cfg.Delimiter(),
		HasHeader: cfg.Header(),
		Encoding:  cfg.Encoding(),
	}
	if d, _ := c.Flags().GetString(extension.FlagDelimiter); d != "" {
		opts.Delimiter = []rune(d)[0]
	}
	if noHeader, _ := c.Flags().GetBool(extension.FlagNoHeader); noHeader {
		opts.HasHeader = false
	}
	if enc, _ := c.Flags().GetString(extension.FlagEncoding); enc != "" {
		opts.Encoding = enc
	}
	return opts, nil
}

func (e *Extension) runCSV(c *cobra.Command, args []string) error {
	target := args[0]
	sample, _ := c.Flags().GetInt(extension.FlagSample)

	opts, err := parseOptions(c)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	coords, attrs, err := tabular.Read(target, opts)

	entry := log.Event("tabular:csv", "read").Path(target).Format("csv")
	if err == nil {
		entry = entry.Count(coords.Rows())
	}
	entry.Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("csv %q: %w", target, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"rows":              coords.Rows(),
			"attribute_columns": attrs.Cols(),
		})
	}

	fmt.Fprintf(cmd.Out(), "%d rows, %d attribute columns\n", coords.Rows(), attrs.Cols())
	if cmd.Quiet() {
		return nil
	}

	if sample > coords.Rows() {
		sample = coords.Rows()
	}
	for i := 0; i < sample; i++ {
		fmt.Fprintln(cmd.Out(), rowString(coords.Row(i), attrs, i))
	}
	if sample < coords.Rows() {
		fmt.Fprintf(cmd.Out(), "... (%d more)\n", coords.Rows()-sample)
	}
	return nil
}

func rowString(coord []float64, attrs *mat.Dense, i int) string {
	vals := make([]string, 0, len(coord)+attrs.Cols())
	for _, v := range coord {
		vals = append(vals, strconv.FormatFloat(v, 'g', -1, 64))
	}
	for j := 0; j < attrs.Cols(); j++ {
		vals = append(vals, strconv.FormatFloat(attrs.At(i, j), 'g', -1, 64))
	}
	return strings.Join(vals, ", ")
}
