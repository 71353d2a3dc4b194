// Package tabular ingests CSV point data for the viewer. A target may be a
// single .csv file or a directory of them; the parsed rows concatenate into
// one matrix split as coordinates (first three columns) and attributes
// (remaining columns).
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/paths"
	"github.com/maharshi-gor/tractome/internal/progress"
)

var (
	// ErrEmptyInput indicates a target directory contains no CSV files.
	ErrEmptyInput = errors.New("no csv files found")
	// ErrInvalidFormat indicates a wrong extension or malformed CSV content.
	ErrInvalidFormat = errors.New("invalid csv input")
)

// Options configures CSV parsing.
type Options struct {
	Delimiter rune   // field separator, ',' when zero
	HasHeader bool   // skip the first row of each file
	Encoding  string // text encoding name, "utf-8" when empty
}

// DefaultOptions returns the parsing defaults: comma-separated, with a
// header row, UTF-8 encoded.
func DefaultOptions() Options {
	return Options{Delimiter: ',', HasHeader: true, Encoding: "utf-8"}
}

// OptionsFrom builds Options from string-typed settings, such as config
// values or CLI flags. An empty delimiter falls back to a comma.
func OptionsFrom(delimiter string, header bool, encoding string) Options {
	opts := Options{Delimiter: ',', HasHeader: header, Encoding: encoding}
	if delimiter != "" {
		opts.Delimiter = []rune(delimiter)[0]
	}
	return opts
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// Read loads CSV point data from a file or a directory of files.
//
// Directory targets collect every .csv file directly within (extension
// matched case-insensitively) in lexicographic name order; an empty
// collection fails with ErrEmptyInput. File targets must carry a .csv
// extension or fail with ErrInvalidFormat. Missing paths fail with
// paths.ErrNotFound.
//
// Files that parse to zero data rows are skipped. All remaining chunks
// must agree on column count (at least three). If every file was empty the
// result is a 0x3 coordinate matrix and a 0x0 attribute matrix.
func Read(target string, opts Options) (coords, attrs *mat.Dense, err error) {
	files, err := resolve(target)
	if err != nil {
		return nil, nil, err
	}

	prog := progress.New("Reading CSV files", len(files))
	chunks := make([]*mat.Dense, 0, len(files))
	for _, f := range files {
		chunk, err := readFile(f, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f, err)
		}
		prog.Increment()
		if chunk.Rows() == 0 {
			continue
		}
		if chunk.Cols() < 3 {
			return nil, nil, fmt.Errorf("%w: %s has %d columns, need at least 3 for coordinates", ErrInvalidFormat, f, chunk.Cols())
		}
		chunks = append(chunks, chunk)
	}

	prog.Done()

	if len(chunks) == 0 {
		return mat.NewDense(0, 3, nil), mat.NewDense(0, 0, nil), nil
	}

	data, err := mat.Stack(chunks...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return data.Slice(0, 3), data.Slice(3, data.Cols()), nil
}

// resolve expands the target and returns the ordered list of CSV files
// to parse.
func resolve(target string) ([]string, error) {
	expanded := paths.Expand(target)

	if paths.IsDir(expanded) {
		entries, err := os.ReadDir(expanded)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", expanded, err)
		}
		var files []string
		for _, e := range entries {
			if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
				files = append(files, filepath.Join(expanded, e.Name()))
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: directory %s", ErrEmptyInput, expanded)
		}
		sort.Strings(files)
		return files, nil
	}

	validated, err := paths.Validate(expanded)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(validated), ".csv") {
		return nil, fmt.Errorf("%w: %s is not a csv file", ErrInvalidFormat, validated)
	}
	return []string{validated}, nil
}

// readFile parses a single CSV file into a matrix. The file is fully read
// and closed before returning.
func readFile(path string, opts Options) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, err := decodeReader(f, opts.Encoding)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(decoded)
	r.Comma = opts.delimiter()
	r.TrimLeadingSpace = true

	m := mat.NewDense(0, 0, nil)
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if first && opts.HasHeader {
			first = false
			continue
		}
		first = false

		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: non-numeric value %q", ErrInvalidFormat, field)
			}
			row[i] = v
		}
		m.AppendRow(row)
	}
	return m, nil
}

// decodeReader wraps r with a decoder for the named text encoding.
// UTF-8 (the default) passes through untouched.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrInvalidFormat, name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
