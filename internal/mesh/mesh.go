// Package mesh loads triangle surface meshes for anatomical context in the
// viewer. Supported formats are Wavefront OBJ, PLY (ascii and binary
// little-endian) and STL (ascii and binary). Faces with more than three
// vertices are fan-triangulated.
package mesh

import (
	"errors"
	"fmt"
	"os"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/paths"
)

// ErrInvalidFormat indicates an unsupported extension or malformed mesh file.
var ErrInvalidFormat = errors.New("invalid mesh file")

// Mesh is a loaded triangle mesh.
type Mesh struct {
	// Vertices is an n x 3 matrix of vertex positions.
	Vertices *mat.Dense
	// Faces holds triangles as vertex indices into Vertices.
	Faces [][3]int
	// Texture is the validated texture path, empty when none was given.
	Texture string
}

// Load reads a mesh file, dispatching on the extension.
func Load(path string) (*Mesh, error) {
	validated, err := paths.Validate(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(validated)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch paths.Ext(validated) {
	case ".obj":
		return loadOBJ(f)
	case ".ply":
		return loadPLY(f)
	case ".stl":
		return loadSTL(f)
	default:
		return nil, fmt.Errorf("%w: unsupported extension on %s", ErrInvalidFormat, validated)
	}
}

// LoadWithTexture reads a mesh and validates the accompanying texture
// path. An empty texture is allowed and skips validation.
func LoadWithTexture(path, texture string) (*Mesh, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	if texture != "" {
		validated, err := paths.Validate(texture)
		if err != nil {
			return nil, err
		}
		m.Texture = validated
	}
	return m, nil
}

// checkFace verifies all indices of a triangle are in range.
func checkFace(face [3]int, nVertices int) error {
	for _, idx := range face {
		if idx < 0 || idx >= nVertices {
			return fmt.Errorf("%w: face index %d out of range [0,%d)", ErrInvalidFormat, idx, nVertices)
		}
	}
	return nil
}

// triangulate appends a polygon to faces as a triangle fan.
func triangulate(faces [][3]int, polygon []int) [][3]int {
	for i := 1; i+1 < len(polygon); i++ {
		faces = append(faces, [3]int{polygon[0], polygon[i], polygon[i+1]})
	}
	return faces
}
