// trx.go implements a minimal profile of the TRX container format.
//
// A .trx file is a zip archive holding header.json, a flat float32
// positions array, a uint64 offsets array and optional per-streamline data
// groups under dps/. Positions are stored in RASMM already. The profile
// written here covers what the viewer produces and consumes: positions,
// offsets and float32 dps groups such as the "dismatrix" embeddings.

package tractogram

import (
	"archive/zip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
)

type trxHeader struct {
	Dimensions    [3]int16      `json:"DIMENSIONS"`
	VoxelToRasmm  [4][4]float64 `json:"VOXEL_TO_RASMM"`
	NbVertices    int           `json:"NB_VERTICES"`
	NbStreamlines int           `json:"NB_STREAMLINES"`
}

func loadTrx(p string) (*Tractogram, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer zr.Close()

	var hdr *trxHeader
	var positions []float32
	var offsets []uint64
	dps := map[string]*mat.Dense{}
	var dpsRaw = map[string][]float32{}

	for _, zf := range zr.File {
		name := path.Clean(zf.Name)
		switch {
		case name == "header.json":
			hdr = &trxHeader{}
			if err := readJSONEntry(zf, hdr); err != nil {
				return nil, err
			}
		case strings.HasPrefix(name, "positions.") && strings.HasSuffix(name, ".float32"):
			if positions, err = readFloat32Entry(zf); err != nil {
				return nil, err
			}
		case strings.HasPrefix(name, "offsets.") && strings.HasSuffix(name, ".uint64"):
			if offsets, err = readUint64Entry(zf); err != nil {
				return nil, err
			}
		case strings.HasPrefix(name, "dps/") && strings.HasSuffix(name, ".float32"):
			values, err := readFloat32Entry(zf)
			if err != nil {
				return nil, err
			}
			group := strings.TrimSuffix(path.Base(name), ".float32")
			// Group files may carry a column count infix (name.N.float32).
			if i := strings.LastIndex(group, "."); i > 0 {
				group = group[:i]
			}
			dpsRaw[group] = values
		}
	}

	if hdr == nil {
		return nil, fmt.Errorf("%w: archive has no header.json", ErrInvalidFormat)
	}
	if len(positions) != hdr.NbVertices*3 {
		return nil, fmt.Errorf("%w: %d position values for %d vertices", ErrInvalidFormat, len(positions), hdr.NbVertices)
	}

	streamlines, err := sliceStreamlines(positions, offsets, hdr)
	if err != nil {
		return nil, err
	}

	for group, values := range dpsRaw {
		if hdr.NbStreamlines == 0 || len(values)%hdr.NbStreamlines != 0 {
			return nil, fmt.Errorf("%w: dps group %q has %d values for %d streamlines", ErrInvalidFormat, group, len(values), hdr.NbStreamlines)
		}
		cols := len(values) / hdr.NbStreamlines
		data := make([]float64, len(values))
		for i, v := range values {
			data[i] = float64(v)
		}
		dps[group] = mat.NewDense(hdr.NbStreamlines, cols, data)
	}

	return &Tractogram{
		Streamlines: streamlines,
		Reference: Reference{
			Affine:     orIdentity(hdr.VoxelToRasmm),
			Dims:       hdr.Dimensions,
			VoxelOrder: "RAS",
		},
		PerStreamline: dps,
	}, nil
}

// sliceStreamlines cuts the flat positions array into streamlines using
// the offsets table. Offsets hold each streamline's starting vertex index;
// a trailing end sentinel equal to NB_VERTICES is accepted but optional.
func sliceStreamlines(positions []float32, offsets []uint64, hdr *trxHeader) ([]Streamline, error) {
	if len(offsets) == hdr.NbStreamlines+1 {
		offsets = offsets[:hdr.NbStreamlines]
	}
	if len(offsets) != hdr.NbStreamlines {
		return nil, fmt.Errorf("%w: %d offsets for %d streamlines", ErrInvalidFormat, len(offsets), hdr.NbStreamlines)
	}

	streamlines := make([]Streamline, len(offsets))
	for i, start := range offsets {
		end := uint64(hdr.NbVertices)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if start > end || end > uint64(hdr.NbVertices) {
			return nil, fmt.Errorf("%w: offset %d out of order", ErrInvalidFormat, start)
		}
		s := make(Streamline, end-start)
		for j := range s {
			base := (start + uint64(j)) * 3
			s[j] = Point{positions[base], positions[base+1], positions[base+2]}
		}
		streamlines[i] = s
	}
	return streamlines, nil
}

func saveTrx(t *Tractogram, p string) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	hdr := trxHeader{
		Dimensions:    t.Reference.Dims,
		VoxelToRasmm:  orIdentity(t.Reference.Affine),
		NbVertices:    t.Points(),
		NbStreamlines: len(t.Streamlines),
	}
	if err := writeJSONEntry(zw, "header.json", hdr); err != nil {
		return err
	}

	positions := make([]float32, 0, hdr.NbVertices*3)
	offsets := make([]uint64, 0, hdr.NbStreamlines)
	vertex := uint64(0)
	for _, s := range t.Streamlines {
		offsets = append(offsets, vertex)
		vertex += uint64(len(s))
		for _, pt := range s {
			positions = append(positions, pt[0], pt[1], pt[2])
		}
	}

	if err := writeFloat32Entry(zw, "positions.3.float32", positions); err != nil {
		return err
	}
	if err := writeUint64Entry(zw, "offsets.uint64", offsets); err != nil {
		return err
	}

	for group, m := range t.PerStreamline {
		values := make([]float32, 0, m.Rows()*m.Cols())
		for r := 0; r < m.Rows(); r++ {
			for _, v := range m.Row(r) {
				values = append(values, float32(v))
			}
		}
		name := fmt.Sprintf("dps/%s.%d.float32", group, m.Cols())
		if err := writeFloat32Entry(zw, name, values); err != nil {
			return err
		}
	}

	return zw.Close()
}

func readJSONEntry(zf *zip.File, v any) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed header.json: %v", ErrInvalidFormat, err)
	}
	return nil
}

func readFloat32Entry(zf *zip.File) ([]float32, error) {
	raw, err := readEntry(zf)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %s length not a multiple of 4", ErrInvalidFormat, zf.Name)
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func readUint64Entry(zf *zip.File) ([]uint64, error) {
	raw, err := readEntry(zf)
	if err != nil {
		return nil, err
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("%w: %s length not a multiple of 8", ErrInvalidFormat, zf.Name)
	}
	out := make([]uint64, len(raw)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return out, nil
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return raw, nil
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(v)
}

func writeFloat32Entry(zw *zip.Writer, name string, values []float32) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, values)
}

func writeUint64Entry(zw *zip.Writer, name string, values []uint64) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, values)
}
