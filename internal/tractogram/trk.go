// trk.go implements the TrackVis .trk codec.
//
// The format is a fixed 1000-byte little-endian header followed by
// streamline records. On disk points live in "voxmm" space (voxel indices
// scaled by voxel size, corner-of-voxel origin); loading converts them to
// RASMM via the header's vox_to_ras matrix and saving applies the inverse.

package tractogram

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
)

const (
	trkHeaderSize = 1000
	trkVersion    = 2
	trkMagic      = "TRACK"
)

type trkHeader struct {
	Dim        [3]int16
	VoxelSizes [3]float32
	NScalars   int16
	NProps     int16
	VoxToRas   [4][4]float64
	VoxelOrder string
	Count      int32
}

func loadTrk(path string) (*Tractogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	hdr, err := readTrkHeader(r)
	if err != nil {
		return nil, err
	}

	toRasmm, err := trkToRasmm(hdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	var streamlines []Streamline
	for {
		var n int32
		err := binary.Read(r, binary.LittleEndian, &n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading streamline length: %v", ErrInvalidFormat, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative streamline length %d", ErrInvalidFormat, n)
		}

		s := make(Streamline, n)
		floats := make([]float32, int(n)*(3+int(hdr.NScalars)))
		if err := binary.Read(r, binary.LittleEndian, floats); err != nil {
			return nil, fmt.Errorf("%w: truncated streamline: %v", ErrInvalidFormat, err)
		}
		stride := 3 + int(hdr.NScalars)
		for i := 0; i < int(n); i++ {
			p := Point{floats[i*stride], floats[i*stride+1], floats[i*stride+2]}
			s[i] = apply(toRasmm, p)
		}

		// Per-streamline properties are not carried by the viewer; skip.
		if hdr.NProps > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(hdr.NProps)*4); err != nil {
				return nil, fmt.Errorf("%w: truncated properties: %v", ErrInvalidFormat, err)
			}
		}
		streamlines = append(streamlines, s)
	}

	if hdr.Count > 0 && int(hdr.Count) != len(streamlines) {
		return nil, fmt.Errorf("%w: header declares %d streamlines, found %d", ErrInvalidFormat, hdr.Count, len(streamlines))
	}

	return &Tractogram{
		Streamlines: streamlines,
		Reference: Reference{
			Affine:     hdr.VoxToRas,
			Dims:       hdr.Dim,
			VoxelSizes: hdr.VoxelSizes,
			VoxelOrder: hdr.VoxelOrder,
		},
		PerStreamline: map[string]*mat.Dense{},
	}, nil
}

func readTrkHeader(r io.Reader) (*trkHeader, error) {
	raw := make([]byte, trkHeaderSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrInvalidFormat, err)
	}
	if string(raw[0:5]) != trkMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, raw[0:5])
	}

	le := binary.LittleEndian
	if le.Uint32(raw[996:1000]) != trkHeaderSize {
		return nil, fmt.Errorf("%w: hdr_size is not %d", ErrInvalidFormat, trkHeaderSize)
	}

	var h trkHeader
	for i := 0; i < 3; i++ {
		h.Dim[i] = int16(le.Uint16(raw[6+2*i:]))
		h.VoxelSizes[i] = math.Float32frombits(le.Uint32(raw[12+4*i:]))
	}
	h.NScalars = int16(le.Uint16(raw[36:]))
	h.NProps = int16(le.Uint16(raw[238:]))
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			h.VoxToRas[i][j] = float64(math.Float32frombits(le.Uint32(raw[440+16*i+4*j:])))
		}
	}
	h.VoxelOrder = strings.TrimRight(string(raw[948:952]), "\x00")
	h.Count = int32(le.Uint32(raw[988:]))

	// Files written before TrackVis 2 leave vox_to_ras zeroed; a zero
	// bottom-right corner is the tell.
	if h.VoxToRas[3][3] == 0 {
		return nil, fmt.Errorf("%w: header has no vox_to_ras transform", ErrInvalidFormat)
	}
	return &h, nil
}

// trkToRasmm builds the voxmm-to-RASMM transform: scale voxmm down to
// voxel indices, shift by the half-voxel corner offset, then apply
// vox_to_ras.
func trkToRasmm(h *trkHeader) ([4][4]float64, error) {
	scale := identity4()
	for i := 0; i < 3; i++ {
		if h.VoxelSizes[i] == 0 {
			return [4][4]float64{}, fmt.Errorf("zero voxel size")
		}
		scale[i][i] = 1 / float64(h.VoxelSizes[i])
		scale[i][3] = -0.5
	}
	return matmul(h.VoxToRas, scale), nil
}

func saveTrk(t *Tractogram, path string) error {
	toRasmm, err := trkToRasmm(&trkHeader{
		VoxelSizes: orOnes(t.Reference.VoxelSizes),
		VoxToRas:   orIdentity(t.Reference.Affine),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	fromRasmm, err := invert(toRasmm)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeTrkHeader(w, t); err != nil {
		return err
	}

	for _, s := range t.Streamlines {
		if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
			return err
		}
		for _, p := range s {
			vox := apply(fromRasmm, p)
			if err := binary.Write(w, binary.LittleEndian, vox); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

func writeTrkHeader(w io.Writer, t *Tractogram) error {
	raw := make([]byte, trkHeaderSize)
	le := binary.LittleEndian

	copy(raw[0:], trkMagic)
	voxelSizes := orOnes(t.Reference.VoxelSizes)
	affine := orIdentity(t.Reference.Affine)
	for i := 0; i < 3; i++ {
		le.PutUint16(raw[6+2*i:], uint16(t.Reference.Dims[i]))
		le.PutUint32(raw[12+4*i:], math.Float32bits(voxelSizes[i]))
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			le.PutUint32(raw[440+16*i+4*j:], math.Float32bits(float32(affine[i][j])))
		}
	}
	order := t.Reference.VoxelOrder
	if order == "" {
		order = "RAS"
	}
	copy(raw[948:952], order)
	le.PutUint32(raw[988:], uint32(len(t.Streamlines)))
	le.PutUint32(raw[992:], trkVersion)
	le.PutUint32(raw[996:], trkHeaderSize)

	_, err := w.Write(raw)
	return err
}

// matmul multiplies two homogeneous affines.
func matmul(a, b [4][4]float64) [4][4]float64 {
	var out [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

// orIdentity substitutes the identity for a zero affine so tractograms
// built without a reference can still round-trip.
func orIdentity(a [4][4]float64) [4][4]float64 {
	if a[3][3] == 0 {
		return identity4()
	}
	return a
}

// orOnes substitutes unit voxel sizes for a zeroed reference.
func orOnes(v [3]float32) [3]float32 {
	if v[0] == 0 && v[1] == 0 && v[2] == 0 {
		return [3]float32{1, 1, 1}
	}
	return v
}
