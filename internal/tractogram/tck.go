// tck.go implements the MRtrix .tck codec.
//
// The format is a text header ("mrtrix tracks" magic, key: value lines,
// an END marker) pointing at a little-endian float32 triplet stream.
// A NaN triplet separates streamlines and an Inf triplet terminates the
// stream. Points are already in world millimetre space, so no transform
// applies; the spatial reference comes from a NIfTI image instead.

package tractogram

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
)

const tckMagic = "mrtrix tracks"

func loadTck(path string, ref Reference) (*Tractogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	offset, datatype, count, err := readTckHeader(f)
	if err != nil {
		return nil, err
	}
	if datatype != "Float32LE" {
		return nil, fmt.Errorf("%w: unsupported datatype %q", ErrInvalidFormat, datatype)
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	r := bufio.NewReader(f)
	var streamlines []Streamline
	var current Streamline
	for {
		var triplet [3]float32
		if err := binary.Read(r, binary.LittleEndian, &triplet); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				// Well-formed files end with the Inf terminator; tolerate
				// plain EOF after a separator.
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}

		switch {
		case isInf(triplet):
			if len(current) > 0 {
				streamlines = append(streamlines, current)
			}
			if count >= 0 && count != len(streamlines) {
				return nil, fmt.Errorf("%w: header declares %d streamlines, found %d", ErrInvalidFormat, count, len(streamlines))
			}
			return tckTractogram(streamlines, ref), nil
		case isNaN(triplet):
			if len(current) > 0 {
				streamlines = append(streamlines, current)
				current = nil
			}
		default:
			current = append(current, Point(triplet))
		}
	}

	if len(current) > 0 {
		streamlines = append(streamlines, current)
	}
	return tckTractogram(streamlines, ref), nil
}

func tckTractogram(streamlines []Streamline, ref Reference) *Tractogram {
	return &Tractogram{
		Streamlines:   streamlines,
		Reference:     ref,
		PerStreamline: map[string]*mat.Dense{},
	}
}

// readTckHeader parses the text header, returning the data offset from the
// "file: . N" line, the datatype and the declared count (-1 when absent).
func readTckHeader(f *os.File) (offset int64, datatype string, count int, err error) {
	r := bufio.NewReader(f)
	first, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(first) != tckMagic {
		return 0, "", 0, fmt.Errorf("%w: missing %q signature", ErrInvalidFormat, tckMagic)
	}

	offset = -1
	count = -1
	datatype = "Float32LE"
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, "", 0, fmt.Errorf("%w: header not terminated with END", ErrInvalidFormat)
		}
		line = strings.TrimSpace(line)
		if line == "END" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "file":
			// "file: . <offset>" - the dot means this same file.
			fields := strings.Fields(value)
			if len(fields) != 2 || fields[0] != "." {
				return 0, "", 0, fmt.Errorf("%w: unsupported file entry %q", ErrInvalidFormat, value)
			}
			offset, err = strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return 0, "", 0, fmt.Errorf("%w: bad data offset %q", ErrInvalidFormat, fields[1])
			}
		case "datatype":
			datatype = value
		case "count":
			if n, err := strconv.Atoi(value); err == nil {
				count = n
			}
		}
	}

	if offset < 0 {
		return 0, "", 0, fmt.Errorf("%w: header has no file offset entry", ErrInvalidFormat)
	}
	return offset, datatype, count, nil
}

func saveTck(t *Tractogram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// The offset line must state its own end position. The header is
	// padded to a fixed width so the offset is stable to compute.
	var header strings.Builder
	header.WriteString(tckMagic + "\n")
	header.WriteString(fmt.Sprintf("count: %d\n", len(t.Streamlines)))
	header.WriteString("datatype: Float32LE\n")
	const offsetWidth = 10
	fileLine := fmt.Sprintf("file: . %%%dd\n", offsetWidth)
	offset := header.Len() + len(fmt.Sprintf(fileLine, 0)) + len("END\n")
	header.WriteString(fmt.Sprintf(fileLine, offset))
	header.WriteString("END\n")

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(header.String()); err != nil {
		return err
	}

	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, s := range t.Streamlines {
		for _, p := range s {
			if err := binary.Write(w, binary.LittleEndian, p); err != nil {
				return err
			}
		}
		if err := binary.Write(w, binary.LittleEndian, [3]float32{nan, nan, nan}); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, [3]float32{inf, inf, inf}); err != nil {
		return err
	}
	return w.Flush()
}

func isNaN(p [3]float32) bool {
	return math.IsNaN(float64(p[0])) && math.IsNaN(float64(p[1])) && math.IsNaN(float64(p[2]))
}

func isInf(p [3]float32) bool {
	return math.IsInf(float64(p[0]), 0) && math.IsInf(float64(p[1]), 0) && math.IsInf(float64(p[2]), 0)
}
