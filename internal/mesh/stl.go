// stl.go parses STL meshes, both the 84-byte-header binary layout and the
// ascii "solid" form. STL carries no shared vertex table, so every facet
// contributes three fresh vertices; the viewer does not need welding.

package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
)

func loadSTL(r io.Reader) (*Mesh, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if isAsciiSTL(raw) {
		return loadSTLAscii(bytes.NewReader(raw))
	}
	return loadSTLBinary(raw)
}

// isAsciiSTL distinguishes the two layouts. A binary file may still begin
// with "solid" in its 80-byte comment header, so the facet keyword must
// also appear in the early content.
func isAsciiSTL(raw []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(raw, " \t\r\n"), []byte("solid")) {
		return false
	}
	head := raw
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("facet"))
}

func loadSTLBinary(raw []byte) (*Mesh, error) {
	if len(raw) < 84 {
		return nil, fmt.Errorf("%w: binary stl shorter than header", ErrInvalidFormat)
	}
	count := binary.LittleEndian.Uint32(raw[80:84])
	const recordSize = 50 // normal + 3 vertices (12 floats) + attribute count
	if int64(len(raw)-84) < int64(count)*recordSize {
		return nil, fmt.Errorf("%w: binary stl truncated (%d facets declared)", ErrInvalidFormat, count)
	}

	vertices := mat.NewDense(0, 0, nil)
	faces := make([][3]int, 0, count)
	le := binary.LittleEndian
	for i := 0; i < int(count); i++ {
		rec := raw[84+i*recordSize:]
		base := vertices.Rows()
		for v := 0; v < 3; v++ {
			off := 12 + v*12 // skip the normal
			vertices.AppendRow([]float64{
				float64(math.Float32frombits(le.Uint32(rec[off:]))),
				float64(math.Float32frombits(le.Uint32(rec[off+4:]))),
				float64(math.Float32frombits(le.Uint32(rec[off+8:]))),
			})
		}
		faces = append(faces, [3]int{base, base + 1, base + 2})
	}

	if vertices.Rows() == 0 {
		return nil, fmt.Errorf("%w: no facets", ErrInvalidFormat)
	}
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}

func loadSTLAscii(r io.Reader) (*Mesh, error) {
	vertices := mat.NewDense(0, 0, nil)
	var faces [][3]int
	var facet []int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrInvalidFormat, line)
			}
			row := make([]float64, 3)
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFormat, line, err)
				}
				row[i] = v
			}
			facet = append(facet, vertices.Rows())
			vertices.AppendRow(row)

		case "endfacet":
			if len(facet) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet with %d vertices", ErrInvalidFormat, line, len(facet))
			}
			faces = append(faces, [3]int{facet[0], facet[1], facet[2]})
			facet = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if vertices.Rows() == 0 {
		return nil, fmt.Errorf("%w: no facets", ErrInvalidFormat)
	}
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}
