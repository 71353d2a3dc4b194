package inspect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/tabular"
	"github.com/maharshi-gor/tractome/internal/tractogram"
)

// chtemp switches to a temp directory so config loading never picks up a
// real local .tractome/config.yaml.
func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}

func writeTrk(t *testing.T, path string) {
	t.Helper()
	tr, err := tractogram.FromStreamlines(
		[]tractogram.Streamline{
			{{0, 0, 0}, {1, 1, 1}},
			{{2, 2, 2}, {3, 3, 3}, {4, 4, 4}},
		},
		tractogram.Reference{
			Affine:     [4][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
			Dims:       [3]int16{10, 10, 10},
			VoxelSizes: [3]float32{1, 1, 1},
			VoxelOrder: "RAS",
		},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, tractogram.Save(tr, path))
}

func TestSummariseTractogram(t *testing.T) {
	dir := chtemp(t)
	path := filepath.Join(dir, "bundle.trk")
	writeTrk(t, path)

	info, err := Summarise(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "trk", info.Format)

	fields := map[string]string{}
	for _, f := range info.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "2", fields["streamlines"])
	assert.Equal(t, "5", fields["points"])
}

func TestSummariseCSVFile(t *testing.T) {
	dir := chtemp(t)
	path := filepath.Join(dir, "points.csv")
	coords := mat.NewDense(2, 3, []float64{0, 0, 0, 1, 1, 1})
	require.NoError(t, tabular.Write(path, coords, mat.NewDense(2, 0, nil), tabular.DefaultOptions()))

	info, err := Summarise(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "csv", info.Format)
}

func TestSummariseCSVDirectory(t *testing.T) {
	dir := chtemp(t)
	sub := filepath.Join(dir, "points")
	require.NoError(t, os.Mkdir(sub, 0755))
	coords := mat.NewDense(1, 3, []float64{5, 6, 7})
	require.NoError(t, tabular.Write(filepath.Join(sub, "a.csv"), coords, mat.NewDense(1, 0, nil), tabular.DefaultOptions()))

	info, err := Summarise(sub, "", "")
	require.NoError(t, err)
	assert.Equal(t, "csv", info.Format)
}

func TestSummariseMeshWithTexture(t *testing.T) {
	dir := chtemp(t)
	objPath := filepath.Join(dir, "surface.obj")
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(objPath, []byte(obj), 0644))

	texture := filepath.Join(dir, "brain.png")
	require.NoError(t, os.WriteFile(texture, []byte("png"), 0644))

	info, err := Summarise(objPath, "", texture)
	require.NoError(t, err)
	assert.Equal(t, "obj", info.Format)

	// Missing texture fails
	_, err = Summarise(objPath, "", filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestSummariseUnsupported(t *testing.T) {
	dir := chtemp(t)
	path := filepath.Join(dir, "scene.vtk")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Summarise(path, "", "")
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestSummariseSizeLimit(t *testing.T) {
	dir := chtemp(t)
	require.NoError(t, os.Mkdir(".tractome", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(".tractome", "config.yaml"), []byte("limits:\n  max_file_size: 16\n"), 0644))

	path := filepath.Join(dir, "bundle.trk")
	writeTrk(t, path)

	_, err := Summarise(path, "", "")
	assert.ErrorContains(t, err, "limits.max_file_size")
}

func TestCompare(t *testing.T) {
	dir := chtemp(t)
	a := filepath.Join(dir, "a.trk")
	b := filepath.Join(dir, "b.trk")
	writeTrk(t, a)
	writeTrk(t, b)

	r, err := Compare(a, b, "")
	require.NoError(t, err)
	assert.False(t, r.Changed())

	// A different streamline count shows up as a change
	tr, err := tractogram.FromStreamlines(
		[]tractogram.Streamline{{{0, 0, 0}, {1, 1, 1}}},
		tractogram.Reference{
			Affine:     [4][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
			Dims:       [3]int16{10, 10, 10},
			VoxelSizes: [3]float32{1, 1, 1},
		},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, tractogram.Save(tr, b))

	r, err = Compare(a, b, "")
	require.NoError(t, err)
	assert.True(t, r.Changed())
}
