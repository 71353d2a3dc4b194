// obj.go parses Wavefront OBJ geometry: v and f records only, which is
// all the viewer needs. Indices are 1-based; negative indices count back
// from the most recent vertex. Texture/normal references (f a/b/c) are
// accepted and ignored.

package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
)

func loadOBJ(r io.Reader) (*Mesh, error) {
	vertices := mat.NewDense(0, 0, nil)
	var faces [][3]int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
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
			vertices.AppendRow(row)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 vertices", ErrInvalidFormat, line)
			}
			polygon := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := objIndex(ref, vertices.Rows())
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidFormat, line, err)
				}
				polygon = append(polygon, idx)
			}
			faces = triangulate(faces, polygon)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	for _, face := range faces {
		if err := checkFace(face, vertices.Rows()); err != nil {
			return nil, err
		}
	}
	if vertices.Rows() == 0 {
		return nil, fmt.Errorf("%w: no vertices", ErrInvalidFormat)
	}
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}

// objIndex resolves a face vertex reference ("7", "7/1/2", "-1") to a
// zero-based vertex index.
func objIndex(ref string, nVertices int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	idx, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	switch {
	case idx > 0:
		return idx - 1, nil
	case idx < 0:
		return nVertices + idx, nil
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
}
