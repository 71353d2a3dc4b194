// Package nifti reads NIfTI-1 volumes (.nii, .nii.gz). It decodes the
// 348-byte header, the voxel data, and the voxel-to-world affine, which is
// all the viewer needs to place a volume or act as a tractogram reference.
//
// Affine precedence follows the reference implementations: the sform is
// used when sform_code > 0, then the qform quaternion, then a pixdim-scaled
// identity.
package nifti

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/paths"
)

// ErrInvalidFormat indicates the file is not a readable NIfTI-1 image.
var ErrInvalidFormat = errors.New("invalid nifti file")

const headerSize = 348

// NIfTI-1 datatype codes.
const (
	typeUint8   = 2
	typeInt16   = 4
	typeInt32   = 8
	typeFloat32 = 16
	typeFloat64 = 64
	typeInt8    = 256
	typeUint16  = 512
)

// Header carries the subset of NIfTI-1 header fields the viewer uses.
type Header struct {
	Dim       [8]int16   // dim[0] = number of dimensions
	Datatype  int16
	Bitpix    int16
	Pixdim    [8]float32 // pixdim[0] is the qfac sign
	VoxOffset float32
	SclSlope  float32
	SclInter  float32
	QformCode int16
	SformCode int16
	Quatern   [3]float32 // b, c, d
	Qoffset   [3]float32
	Srow      [3][4]float32
	Magic     string
}

// VoxelSizes returns the spatial voxel dimensions (pixdim[1:4]).
func (h *Header) VoxelSizes() [3]float32 {
	return [3]float32{h.Pixdim[1], h.Pixdim[2], h.Pixdim[3]}
}

// SpatialDims returns the spatial extent (dim[1:4]).
func (h *Header) SpatialDims() [3]int16 {
	return [3]int16{h.Dim[1], h.Dim[2], h.Dim[3]}
}

// Image is a loaded NIfTI volume.
type Image struct {
	Header Header
	// Data holds voxel values flattened in NIfTI order (x fastest), one
	// row per volume: shape (nvolumes, nx*ny*nz). Scalar volumes have a
	// single row.
	Data   *mat.Dense
	Affine [4][4]float64
}

// Load reads a NIfTI-1 file. Gzip compression is detected from the
// .nii.gz extension.
func Load(path string) (*Image, error) {
	validated, err := paths.Validate(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(validated)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if paths.Ext(validated) == ".nii.gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		defer gz.Close()
		r = gz
	}

	return decode(r)
}

func decode(r io.Reader) (*Image, error) {
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrInvalidFormat, err)
	}

	order, err := byteOrder(raw)
	if err != nil {
		return nil, err
	}

	hdr := parseHeader(raw, order)
	if !strings.HasPrefix(hdr.Magic, "n+1") && !strings.HasPrefix(hdr.Magic, "ni1") {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, hdr.Magic)
	}
	if hdr.Dim[0] < 1 || hdr.Dim[0] > 7 {
		return nil, fmt.Errorf("%w: dim[0] = %d", ErrInvalidFormat, hdr.Dim[0])
	}

	// Skip from end of header to vox_offset. Single-file NIfTI has
	// vox_offset >= 352 (348-byte header + extension flag).
	skip := int64(hdr.VoxOffset) - headerSize
	if skip < 0 {
		return nil, fmt.Errorf("%w: vox_offset %v inside header", ErrInvalidFormat, hdr.VoxOffset)
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	data, err := readVoxels(r, &hdr, order)
	if err != nil {
		return nil, err
	}

	return &Image{Header: hdr, Data: data, Affine: affine(&hdr)}, nil
}

// byteOrder detects endianness from sizeof_hdr, which must decode to 348.
func byteOrder(raw []byte) (binary.ByteOrder, error) {
	if binary.LittleEndian.Uint32(raw[0:4]) == headerSize {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint32(raw[0:4]) == headerSize {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: sizeof_hdr is not %d", ErrInvalidFormat, headerSize)
}

func parseHeader(raw []byte, o binary.ByteOrder) Header {
	f32 := func(off int) float32 {
		return math.Float32frombits(o.Uint32(raw[off : off+4]))
	}
	i16 := func(off int) int16 {
		return int16(o.Uint16(raw[off : off+2]))
	}

	var h Header
	for i := 0; i < 8; i++ {
		h.Dim[i] = i16(40 + 2*i)
		h.Pixdim[i] = f32(76 + 4*i)
	}
	h.Datatype = i16(70)
	h.Bitpix = i16(72)
	h.VoxOffset = f32(108)
	h.SclSlope = f32(112)
	h.SclInter = f32(116)
	h.QformCode = i16(252)
	h.SformCode = i16(254)
	for i := 0; i < 3; i++ {
		h.Quatern[i] = f32(256 + 4*i)
		h.Qoffset[i] = f32(268 + 4*i)
		for j := 0; j < 4; j++ {
			h.Srow[i][j] = f32(280 + 16*i + 4*j)
		}
	}
	h.Magic = strings.TrimRight(string(raw[344:348]), "\x00")
	return h
}

// readVoxels decodes voxel data into float64, applying scl_slope/scl_inter
// when the slope is set.
func readVoxels(r io.Reader, h *Header, o binary.ByteOrder) (*mat.Dense, error) {
	spatial := 1
	for i := 1; i <= 3 && i <= int(h.Dim[0]); i++ {
		spatial *= int(h.Dim[i])
	}
	volumes := 1
	for i := 4; i <= int(h.Dim[0]); i++ {
		if h.Dim[i] > 0 {
			volumes *= int(h.Dim[i])
		}
	}

	width, err := sampleWidth(h.Datatype)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, spatial*width)
	out := mat.NewDense(volumes, spatial, nil)
	for v := 0; v < volumes; v++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: truncated voxel data: %v", ErrInvalidFormat, err)
		}
		row := out.Row(v)
		for i := 0; i < spatial; i++ {
			row[i] = decodeSample(buf[i*width:], h.Datatype, o)
		}
	}

	if h.SclSlope != 0 && (h.SclSlope != 1 || h.SclInter != 0) {
		slope, inter := float64(h.SclSlope), float64(h.SclInter)
		for v := 0; v < volumes; v++ {
			row := out.Row(v)
			for i := range row {
				row[i] = row[i]*slope + inter
			}
		}
	}
	return out, nil
}

func sampleWidth(datatype int16) (int, error) {
	switch datatype {
	case typeUint8, typeInt8:
		return 1, nil
	case typeInt16, typeUint16:
		return 2, nil
	case typeInt32, typeFloat32:
		return 4, nil
	case typeFloat64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: unsupported datatype %d", ErrInvalidFormat, datatype)
	}
}

func decodeSample(b []byte, datatype int16, o binary.ByteOrder) float64 {
	switch datatype {
	case typeUint8:
		return float64(b[0])
	case typeInt8:
		return float64(int8(b[0]))
	case typeInt16:
		return float64(int16(o.Uint16(b)))
	case typeUint16:
		return float64(o.Uint16(b))
	case typeInt32:
		return float64(int32(o.Uint32(b)))
	case typeFloat32:
		return float64(math.Float32frombits(o.Uint32(b)))
	case typeFloat64:
		return math.Float64frombits(o.Uint64(b))
	}
	return 0
}

// affine computes the voxel-to-world transform.
func affine(h *Header) [4][4]float64 {
	var a [4][4]float64
	a[3][3] = 1

	switch {
	case h.SformCode > 0:
		for i := 0; i < 3; i++ {
			for j := 0; j < 4; j++ {
				a[i][j] = float64(h.Srow[i][j])
			}
		}
	case h.QformCode > 0:
		return qformAffine(h)
	default:
		for i := 0; i < 3; i++ {
			a[i][i] = float64(h.Pixdim[i+1])
		}
	}
	return a
}

// qformAffine reconstructs the rotation from the quaternion representation
// defined by the NIfTI-1 standard.
func qformAffine(h *Header) [4][4]float64 {
	b := float64(h.Quatern[0])
	c := float64(h.Quatern[1])
	d := float64(h.Quatern[2])
	aa := 1 - b*b - c*c - d*d
	if aa < 0 {
		aa = 0
	}
	q := math.Sqrt(aa)

	r := [3][3]float64{
		{q*q + b*b - c*c - d*d, 2*b*c - 2*q*d, 2*b*d + 2*q*c},
		{2*b*c + 2*q*d, q*q + c*c - b*b - d*d, 2*c*d - 2*q*b},
		{2*b*d - 2*q*c, 2*c*d + 2*q*b, q*q + d*d - c*c - b*b},
	}

	qfac := 1.0
	if h.Pixdim[0] < 0 {
		qfac = -1
	}

	var a [4][4]float64
	a[3][3] = 1
	for i := 0; i < 3; i++ {
		a[i][0] = r[i][0] * float64(h.Pixdim[1])
		a[i][1] = r[i][1] * float64(h.Pixdim[2])
		a[i][2] = r[i][2] * float64(h.Pixdim[3]) * qfac
		a[i][3] = float64(h.Qoffset[i])
	}
	return a
}
