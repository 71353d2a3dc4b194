package mesh

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maharshi-gor/tractome/internal/paths"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

const objCube = `# quad face exercises triangulation
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestLoadOBJ(t *testing.T) {
	path := writeTemp(t, "quad.obj", []byte(objCube))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, m.Vertices.Rows())
	require.Len(t, m.Faces, 2, "quad splits into two triangles")
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
	assert.Equal(t, [3]int{0, 2, 3}, m.Faces[1])
	assert.Equal(t, 1.0, m.Vertices.At(2, 0))
}

func TestLoadOBJNegativeAndSlashedIndices(t *testing.T) {
	content := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3/1 -2/2 -1/3\n"
	path := writeTemp(t, "neg.obj", []byte(content))

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Faces, 1)
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
}

func TestLoadOBJOutOfRangeFace(t *testing.T) {
	path := writeTemp(t, "bad.obj", []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

const plyAsciiTriangle = `ply
format ascii 1.0
comment one triangle
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
`

func TestLoadPLYAscii(t *testing.T) {
	path := writeTemp(t, "tri.ply", []byte(plyAsciiTriangle))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Vertices.Rows())
	require.Len(t, m.Faces, 1)
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
}

func TestLoadPLYBinary(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	buf.WriteString("element vertex 3\n")
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	buf.WriteString("element face 1\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	for _, v := range [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	buf.WriteByte(3)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, [3]int32{0, 1, 2}))

	path := writeTemp(t, "tri-bin.ply", buf.Bytes())
	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Vertices.Rows())
	assert.Equal(t, 2.0, m.Vertices.At(1, 0))
	require.Len(t, m.Faces, 1)
}

func TestLoadPLYNegativeListCount(t *testing.T) {
	content := `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
-1 0 0 0
`
	path := writeTemp(t, "neg-count.ply", []byte(content))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadPLYBinaryNegativeListCount(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	buf.WriteString("element vertex 3\n")
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	buf.WriteString("element face 1\n")
	buf.WriteString("property list char int vertex_indices\n")
	buf.WriteString("end_header\n")

	for _, v := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	buf.WriteByte(0xFF) // signed count of -1

	path := writeTemp(t, "neg-count-bin.ply", buf.Bytes())
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadPLYBinaryHugeListCount(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	buf.WriteString("element vertex 3\n")
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	buf.WriteString("element face 1\n")
	buf.WriteString("property list uint int vertex_indices\n")
	buf.WriteString("end_header\n")

	for _, v := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(1<<31-1)))

	path := writeTemp(t, "huge-count.ply", buf.Bytes())
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadPLYListCoordinate(t *testing.T) {
	content := `ply
format ascii 1.0
element vertex 1
property list uchar float x
property float y
property float z
end_header
0 0 0
`
	path := writeTemp(t, "list-coord.ply", []byte(content))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadSTLBinary(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(1)))

	le := binary.LittleEndian
	writeF32 := func(v float32) {
		var b [4]byte
		le.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	}
	for i := 0; i < 3; i++ { // normal
		writeF32(0)
	}
	for _, v := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		writeF32(v[0])
		writeF32(v[1])
		writeF32(v[2])
	}
	buf.Write([]byte{0, 0}) // attribute byte count

	path := writeTemp(t, "tri.stl", buf.Bytes())
	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Vertices.Rows())
	require.Len(t, m.Faces, 1)
}

const stlAsciiTriangle = `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`

func TestLoadSTLAscii(t *testing.T) {
	path := writeTemp(t, "tri-ascii.stl", []byte(stlAsciiTriangle))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Vertices.Rows())
	require.Len(t, m.Faces, 1)
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
}

func TestLoadWithTexture(t *testing.T) {
	meshPath := writeTemp(t, "quad.obj", []byte(objCube))
	texPath := writeTemp(t, "tex.png", []byte("not really a png"))

	m, err := LoadWithTexture(meshPath, texPath)
	require.NoError(t, err)
	assert.Equal(t, texPath, m.Texture)
}

func TestLoadWithMissingTexture(t *testing.T) {
	meshPath := writeTemp(t, "quad.obj", []byte(objCube))

	_, err := LoadWithTexture(meshPath, filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, paths.ErrNotFound)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "mesh.xyz", []byte("nope"))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadMissingMesh(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, paths.ErrNotFound)
}
