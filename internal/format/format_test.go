package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/mesh"
	"github.com/maharshi-gor/tractome/internal/tractogram"
)

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512B", humanSize(512))
	assert.Equal(t, "1.5K", humanSize(1536))
	assert.Equal(t, "2.0M", humanSize(2<<20))
	assert.Equal(t, "3.0G", humanSize(3<<30))
}

func TestTractogramInfo(t *testing.T) {
	tr := &tractogram.Tractogram{
		Streamlines: []tractogram.Streamline{
			{{0, 0, 0}, {1, 1, 1}},
			{{2, 2, 2}, {3, 3, 3}, {4, 4, 4}},
		},
		Reference: tractogram.Reference{
			Dims:       [3]int16{10, 10, 10},
			VoxelSizes: [3]float32{2, 2, 2},
			VoxelOrder: "RAS",
		},
		PerStreamline: map[string]*mat.Dense{
			"dismatrix": mat.NewDense(2, 4, make([]float64, 8)),
		},
	}

	info := Tractogram("bundle.trk", tr)
	assert.Equal(t, "trk", info.Format)

	text := Text(info)
	assert.Contains(t, text, "streamlines")
	assert.Contains(t, text, "2")
	assert.Contains(t, text, "points")
	assert.Contains(t, text, "5")
	assert.Contains(t, text, "10 x 10 x 10")
	assert.Contains(t, text, "dismatrix (4 cols)")
	assert.Contains(t, text, "embeddings")
}

func TestMeshInfo(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: mat.NewDense(3, 3, make([]float64, 9)),
		Faces:    [][3]int{{0, 1, 2}},
		Texture:  "brain.png",
	}

	info := MeshInfo("surface.obj", m)
	assert.Equal(t, "obj", info.Format)

	text := Text(info)
	assert.Contains(t, text, "vertices")
	assert.Contains(t, text, "faces")
	assert.Contains(t, text, "brain.png")
}

func TestTabularInfo(t *testing.T) {
	coords := mat.NewDense(2, 3, []float64{0, 1, 2, 10, 11, 12})
	attrs := mat.NewDense(2, 2, []float64{5, 6, 7, 8})

	info := Tabular("points.csv", coords, attrs)
	text := Text(info)
	assert.Contains(t, text, "rows")
	assert.Contains(t, text, "attribute columns")
	assert.Contains(t, text, "0.000, 1.000, 2.000")
	assert.Contains(t, text, "10.000, 11.000, 12.000")
}

func TestTabularInfoEmpty(t *testing.T) {
	info := Tabular("points.csv", mat.NewDense(0, 3, nil), mat.NewDense(0, 0, nil))
	text := Text(info)
	assert.Contains(t, text, "rows")
	assert.NotContains(t, text, "min")
}

func TestRenderAlignment(t *testing.T) {
	info := Info{
		Path:   "a.trk",
		Format: "trk",
		Fields: []Field{{"streamlines", "2"}, {"points", "5"}},
	}
	lines := strings.Split(strings.TrimRight(Text(info), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "  streamlines"))
	assert.True(t, strings.HasPrefix(lines[2], "  points     "))
}
