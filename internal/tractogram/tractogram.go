// Package tractogram loads and saves streamline data in the TrackVis
// (.trk), MRtrix (.tck) and TRX (.trx) formats.
//
// Streamlines are always held in RASMM (world millimetre) space regardless
// of the on-disk representation; each codec applies the necessary transform
// on load and its inverse on save. Formats that do not embed a spatial
// reference (.tck) require one from a NIfTI image.
package tractogram

import (
	"errors"
	"fmt"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/nifti"
	"github.com/maharshi-gor/tractome/internal/paths"
)

var (
	// ErrInvalidFormat indicates an unsupported extension or malformed file.
	ErrInvalidFormat = errors.New("invalid tractogram file")
	// ErrReferenceRequired indicates a format without an embedded spatial
	// reference was opened without one.
	ErrReferenceRequired = errors.New("reference image required for files other than .trk and .trx")
)

// Point is a single streamline vertex in RASMM space.
type Point [3]float32

// Streamline is an ordered run of points.
type Streamline []Point

// Reference carries the spatial context a tractogram lives in.
type Reference struct {
	Affine     [4][4]float64 // voxel to RASMM
	Dims       [3]int16
	VoxelSizes [3]float32
	VoxelOrder string
}

// Tractogram is a loaded collection of streamlines with optional
// per-streamline data groups (one row per streamline).
type Tractogram struct {
	Streamlines   []Streamline
	Reference     Reference
	PerStreamline map[string]*mat.Dense
}

// Points returns the total vertex count across all streamlines.
func (t *Tractogram) Points() int {
	n := 0
	for _, s := range t.Streamlines {
		n += len(s)
	}
	return n
}

// HasEmbeddings reports whether a dissimilarity matrix is attached.
// The viewer precomputes these embeddings and stores them alongside the
// streamlines under the "dismatrix" group.
func (t *Tractogram) HasEmbeddings() bool {
	_, ok := t.PerStreamline["dismatrix"]
	return ok
}

// LoadReference reads the spatial reference from a NIfTI image.
func LoadReference(path string) (*Reference, error) {
	img, err := nifti.Load(path)
	if err != nil {
		return nil, err
	}
	return &Reference{
		Affine:     img.Affine,
		Dims:       img.Header.SpatialDims(),
		VoxelSizes: img.Header.VoxelSizes(),
		VoxelOrder: "RAS",
	}, nil
}

// Load reads a tractogram, dispatching on the file extension. The
// reference may be nil for self-referencing formats (.trk, .trx) and is
// required for .tck.
func Load(path string, ref *Reference) (*Tractogram, error) {
	validated, err := paths.Validate(path)
	if err != nil {
		return nil, err
	}

	switch paths.Ext(validated) {
	case ".trk":
		return loadTrk(validated)
	case ".trx":
		return loadTrx(validated)
	case ".tck":
		if ref == nil {
			return nil, ErrReferenceRequired
		}
		return loadTck(validated, *ref)
	default:
		return nil, fmt.Errorf("%w: unsupported extension on %s", ErrInvalidFormat, validated)
	}
}

// Save writes a tractogram, dispatching on the file extension.
func Save(t *Tractogram, path string) error {
	expanded := paths.Expand(path)
	switch paths.Ext(expanded) {
	case ".trk":
		return saveTrk(t, expanded)
	case ".trx":
		return saveTrx(t, expanded)
	case ".tck":
		return saveTck(t, expanded)
	default:
		return fmt.Errorf("%w: unsupported extension on %s", ErrInvalidFormat, expanded)
	}
}

// FromStreamlines builds a tractogram from raw streamlines and attaches
// precomputed embeddings as the "dismatrix" per-streamline group.
func FromStreamlines(streamlines []Streamline, ref Reference, embeddings *mat.Dense) (*Tractogram, error) {
	if embeddings != nil && embeddings.Rows() != len(streamlines) {
		return nil, fmt.Errorf("%w: %d embedding rows for %d streamlines", ErrInvalidFormat, embeddings.Rows(), len(streamlines))
	}
	t := &Tractogram{
		Streamlines:   streamlines,
		Reference:     ref,
		PerStreamline: map[string]*mat.Dense{},
	}
	if embeddings != nil {
		t.PerStreamline["dismatrix"] = embeddings
	}
	return t, nil
}
