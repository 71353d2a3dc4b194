// Package format provides output formatting utilities for CLI display.
//
// Centralises formatting logic so that command implementations focus on
// loading data while this package handles presentation concerns like
// column alignment and human-readable sizes.
package format

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
	"github.com/maharshi-gor/tractome/internal/mesh"
	"github.com/maharshi-gor/tractome/internal/nifti"
	"github.com/maharshi-gor/tractome/internal/paths"
	"github.com/maharshi-gor/tractome/internal/tractogram"
)

// humanSize formats a byte count as human-readable (e.g., "1.2K", "3.4M").
func humanSize(bytes int64) string {
	const (
		_        = iota
		KB int64 = 1 << (10 * iota)
		MB
		GB
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fG", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1fM", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1fK", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// Field is a single labelled value in a summary.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Info is a presentable summary of a loaded file.
type Info struct {
	Path   string  `json:"path"`
	Format string  `json:"format"`
	Size   int64   `json:"size"`
	Fields []Field `json:"fields"`
}

func fileSize(path string) int64 {
	fi, err := os.Stat(paths.Expand(path))
	if err != nil {
		return 0
	}
	return fi.Size()
}

// Tractogram summarises a loaded tractogram.
func Tractogram(path string, t *tractogram.Tractogram) Info {
	points := 0
	for _, s := range t.Streamlines {
		points += len(s)
	}

	info := Info{
		Path:   path,
		Format: strings.TrimPrefix(paths.Ext(path), "."),
		Size:   fileSize(path),
		Fields: []Field{
			{"streamlines", fmt.Sprintf("%d", len(t.Streamlines))},
			{"points", fmt.Sprintf("%d", points)},
		},
	}

	if t.Reference.Dims != ([3]int16{}) {
		info.Fields = append(info.Fields,
			Field{"dimensions", fmt.Sprintf("%d x %d x %d", t.Reference.Dims[0], t.Reference.Dims[1], t.Reference.Dims[2])},
			Field{"voxel sizes", fmt.Sprintf("%.2f x %.2f x %.2f", t.Reference.VoxelSizes[0], t.Reference.VoxelSizes[1], t.Reference.VoxelSizes[2])},
		)
	}
	if t.Reference.VoxelOrder != "" {
		info.Fields = append(info.Fields, Field{"voxel order", t.Reference.VoxelOrder})
	}

	if len(t.PerStreamline) > 0 {
		names := make([]string, 0, len(t.PerStreamline))
		for name, m := range t.PerStreamline {
			names = append(names, fmt.Sprintf("%s (%d cols)", name, m.Cols()))
		}
		sort.Strings(names)
		info.Fields = append(info.Fields, Field{"per-streamline", strings.Join(names, ", ")})
	}
	if t.HasEmbeddings() {
		info.Fields = append(info.Fields, Field{"embeddings", "yes"})
	}
	return info
}

// Volume summarises a loaded NIfTI volume.
func Volume(path string, img *nifti.Image) Info {
	dims := img.Header.SpatialDims()
	vs := img.Header.VoxelSizes()

	fields := []Field{
		{"dimensions", fmt.Sprintf("%d x %d x %d", dims[0], dims[1], dims[2])},
		{"voxel sizes", fmt.Sprintf("%.2f x %.2f x %.2f", vs[0], vs[1], vs[2])},
		{"datatype", fmt.Sprintf("%d (%d bit)", img.Header.Datatype, img.Header.Bitpix)},
		{"volumes", fmt.Sprintf("%d", img.Data.Rows())},
	}
	fields = append(fields, Field{"affine", affineString(img.Affine)})

	return Info{
		Path:   path,
		Format: strings.TrimPrefix(paths.Ext(path), "."),
		Size:   fileSize(path),
		Fields: fields,
	}
}

// MeshInfo summarises a loaded surface mesh.
func MeshInfo(path string, m *mesh.Mesh) Info {
	fields := []Field{
		{"vertices", fmt.Sprintf("%d", m.Vertices.Rows())},
		{"faces", fmt.Sprintf("%d", len(m.Faces))},
	}
	if m.Texture != "" {
		fields = append(fields, Field{"texture", m.Texture})
	}
	return Info{
		Path:   path,
		Format: strings.TrimPrefix(paths.Ext(path), "."),
		Size:   fileSize(path),
		Fields: fields,
	}
}

// Tabular summarises an ingested CSV point set.
func Tabular(path string, coords, attrs *mat.Dense) Info {
	fields := []Field{
		{"rows", fmt.Sprintf("%d", coords.Rows())},
		{"attribute columns", fmt.Sprintf("%d", attrs.Cols())},
	}
	if coords.Rows() > 0 {
		lo, hi := bounds(coords)
		fields = append(fields,
			Field{"min", fmt.Sprintf("%.3f, %.3f, %.3f", lo[0], lo[1], lo[2])},
			Field{"max", fmt.Sprintf("%.3f, %.3f, %.3f", hi[0], hi[1], hi[2])},
		)
	}
	return Info{
		Path:   path,
		Format: "csv",
		Size:   fileSize(path),
		Fields: fields,
	}
}

func bounds(m *mat.Dense) (lo, hi [3]float64) {
	for j := range 3 {
		lo[j] = m.At(0, j)
		hi[j] = m.At(0, j)
	}
	for i := 1; i < m.Rows(); i++ {
		for j := range 3 {
			v := m.At(i, j)
			if v < lo[j] {
				lo[j] = v
			}
			if v > hi[j] {
				hi[j] = v
			}
		}
	}
	return lo, hi
}

func affineString(a [4][4]float64) string {
	rows := make([]string, 4)
	for i := range 4 {
		rows[i] = fmt.Sprintf("[%7.3f %7.3f %7.3f %7.3f]", a[i][0], a[i][1], a[i][2], a[i][3])
	}
	return strings.Join(rows, "; ")
}

// Render prints an info summary as an aligned field table.
func Render(w io.Writer, info Info) error {
	if _, err := fmt.Fprintf(w, "%s  (%s, %s)\n", info.Path, info.Format, humanSize(info.Size)); err != nil {
		return err
	}

	maxName := 0
	for _, f := range info.Fields {
		if len(f.Name) > maxName {
			maxName = len(f.Name)
		}
	}
	for _, f := range info.Fields {
		if _, err := fmt.Fprintf(w, "  %-*s  %s\n", maxName, f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// Text returns the rendered summary as a string.
func Text(info Info) string {
	var b strings.Builder
	Render(&b, info)
	return b.String()
}
