package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maharshi-gor/tractome/internal/paths"
)

// buildNifti assembles a minimal little-endian NIfTI-1 file: a 2x2x2
// float32 volume with 2mm voxels and an sform translation.
func buildNifti(t *testing.T, voxels []float32) []byte {
	t.Helper()

	hdr := make([]byte, 352) // header + extension flag
	le := binary.LittleEndian

	le.PutUint32(hdr[0:], 348) // sizeof_hdr

	dims := []int16{3, 2, 2, 2, 1, 1, 1, 1}
	for i, d := range dims {
		le.PutUint16(hdr[40+2*i:], uint16(d))
	}
	le.PutUint16(hdr[70:], 16) // datatype float32
	le.PutUint16(hdr[72:], 32) // bitpix

	pixdims := []float32{1, 2, 2, 2, 0, 0, 0, 0}
	for i, p := range pixdims {
		le.PutUint32(hdr[76+4*i:], math.Float32bits(p))
	}
	le.PutUint32(hdr[108:], math.Float32bits(352)) // vox_offset

	le.PutUint16(hdr[254:], 1) // sform_code
	srow := [3][4]float32{
		{2, 0, 0, -10},
		{0, 2, 0, -20},
		{0, 0, 2, -30},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			le.PutUint32(hdr[280+16*i+4*j:], math.Float32bits(srow[i][j]))
		}
	}
	copy(hdr[344:], "n+1\x00")

	var buf bytes.Buffer
	buf.Write(hdr)
	for _, v := range voxels {
		var cell [4]byte
		le.PutUint32(cell[:], math.Float32bits(v))
		buf.Write(cell[:])
	}
	return buf.Bytes()
}

func testVoxels() []float32 {
	v := make([]float32, 8)
	for i := range v {
		v[i] = float32(i) * 1.5
	}
	return v
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brain.nii")
	require.NoError(t, os.WriteFile(path, buildNifti(t, testVoxels()), 0644))

	img, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, [3]int16{2, 2, 2}, img.Header.SpatialDims())
	assert.Equal(t, [3]float32{2, 2, 2}, img.Header.VoxelSizes())
	assert.Equal(t, 1, img.Data.Rows())
	assert.Equal(t, 8, img.Data.Cols())
	assert.Equal(t, 4.5, img.Data.At(0, 3))

	assert.Equal(t, 2.0, img.Affine[0][0])
	assert.Equal(t, -20.0, img.Affine[1][3])
	assert.Equal(t, 1.0, img.Affine[3][3])
}

func TestLoadGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brain.nii.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(buildNifti(t, testVoxels()))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.5, img.Data.At(0, 7))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.nii"))
	assert.ErrorIs(t, err, paths.ErrNotFound)
}

func TestLoadBadMagic(t *testing.T) {
	dir := t.TempDir()
	raw := buildNifti(t, testVoxels())
	copy(raw[344:], "xxx\x00")
	path := filepath.Join(dir, "bad.nii")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadTruncated(t *testing.T) {
	dir := t.TempDir()
	raw := buildNifti(t, testVoxels())
	path := filepath.Join(dir, "short.nii")
	require.NoError(t, os.WriteFile(path, raw[:360], 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestQformFallback(t *testing.T) {
	dir := t.TempDir()
	raw := buildNifti(t, testVoxels())
	le := binary.LittleEndian

	// Disable sform, enable an identity-rotation qform with offsets.
	le.PutUint16(raw[254:], 0) // sform_code
	le.PutUint16(raw[252:], 1) // qform_code
	le.PutUint32(raw[268:], math.Float32bits(5))
	le.PutUint32(raw[272:], math.Float32bits(6))
	le.PutUint32(raw[276:], math.Float32bits(7))

	path := filepath.Join(dir, "q.nii")
	require.NoError(t, os.WriteFile(path, raw, 0644))

	img, err := Load(path)
	require.NoError(t, err)

	// Zero quaternion b/c/d means pure scaling by pixdim.
	assert.InDelta(t, 2.0, img.Affine[0][0], 1e-6)
	assert.InDelta(t, 5.0, img.Affine[0][3], 1e-6)
	assert.InDelta(t, 7.0, img.Affine[2][3], 1e-6)
}
