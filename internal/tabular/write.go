// write.go implements the CSV export half of the tabular package, used by
// the merge command and by round-trip tests.

package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/paths"
)

// Write saves coordinates and attributes side by side as a single CSV file.
// Coordinate columns are named x, y, z and attribute columns a0, a1, ...
// when opts.HasHeader is set. The attrs matrix may be nil or empty; when
// present its row count must match coords.
func Write(path string, coords, attrs *mat.Dense, opts Options) error {
	if attrs != nil && attrs.Rows() > 0 && attrs.Rows() != coords.Rows() {
		return fmt.Errorf("%w: %d coordinate rows but %d attribute rows", ErrInvalidFormat, coords.Rows(), attrs.Rows())
	}

	f, err := os.Create(paths.Expand(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = opts.delimiter()

	nAttrs := 0
	if attrs != nil {
		nAttrs = attrs.Cols()
	}

	if opts.HasHeader {
		header := []string{"x", "y", "z"}
		for i := 0; i < nAttrs; i++ {
			header = append(header, "a"+strconv.Itoa(i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	record := make([]string, coords.Cols()+nAttrs)
	for r := 0; r < coords.Rows(); r++ {
		for c, v := range coords.Row(r) {
			record[c] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if nAttrs > 0 {
			for c, v := range attrs.Row(r) {
				record[coords.Cols()+c] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
