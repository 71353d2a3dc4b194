// Package inspect loads any supported data file and produces its metadata
// summary. It is the shared dispatch layer behind the info and diff
// commands and their MCP tool equivalents.
package inspect

import (
	"fmt"
	"os"

	"github.com/maharshi-gor/tractome/internal/config"
	"github.com/maharshi-gor/tractome/internal/diff"
	"github.com/maharshi-gor/tractome/internal/format"
	"github.com/maharshi-gor/tractome/internal/mesh"
	"github.com/maharshi-gor/tractome/internal/nifti"
	"github.com/maharshi-gor/tractome/internal/paths"
	"github.com/maharshi-gor/tractome/internal/tabular"
	"github.com/maharshi-gor/tractome/internal/tractogram"
)

// Summarise loads the file at path and returns its metadata summary.
// Directories are treated as CSV collections. refPath supplies the NIfTI
// reference needed for headerless tractogram formats (.tck); texPath
// attaches a texture image to mesh files.
func Summarise(path, refPath, texPath string) (format.Info, error) {
	cfg, err := config.Load()
	if err != nil {
		return format.Info{}, err
	}

	if paths.IsDir(paths.Expand(path)) {
		return summariseCSV(path, tabular.Options{
			Delimiter: cfg.Delimiter(),
			HasHeader: cfg.Header(),
			Encoding:  cfg.Encoding(),
		})
	}

	if err := checkSize(path, cfg.MaxFileSize()); err != nil {
		return format.Info{}, err
	}

	switch paths.Ext(path) {
	case ".trk", ".tck", ".trx":
		var ref *tractogram.Reference
		if refPath != "" {
			r, err := tractogram.LoadReference(refPath)
			if err != nil {
				return format.Info{}, err
			}
			ref = r
		}
		t, err := tractogram.Load(path, ref)
		if err != nil {
			return format.Info{}, err
		}
		return format.Tractogram(path, t), nil
	case ".nii", ".nii.gz":
		img, err := nifti.Load(path)
		if err != nil {
			return format.Info{}, err
		}
		return format.Volume(path, img), nil
	case ".obj", ".ply", ".stl":
		var m *mesh.Mesh
		var err error
		if texPath != "" {
			m, err = mesh.LoadWithTexture(path, texPath)
		} else {
			m, err = mesh.Load(path)
		}
		if err != nil {
			return format.Info{}, err
		}
		return format.MeshInfo(path, m), nil
	case ".csv":
		return summariseCSV(path, tabular.Options{
			Delimiter: cfg.Delimiter(),
			HasHeader: cfg.Header(),
			Encoding:  cfg.Encoding(),
		})
	default:
		return format.Info{}, fmt.Errorf("unsupported file type: %s", path)
	}
}

// checkSize rejects files larger than the configured limit before any
// loader tries to read them into memory.
func checkSize(path string, limit int64) error {
	fi, err := os.Stat(paths.Expand(path))
	if err != nil {
		// Let the loader produce its usual not-found error.
		return nil
	}
	if fi.Size() > limit {
		return fmt.Errorf("%s is %d bytes, over the %d byte limit (see limits.max_file_size)", path, fi.Size(), limit)
	}
	return nil
}

func summariseCSV(target string, opts tabular.Options) (format.Info, error) {
	coords, attrs, err := tabular.Read(target, opts)
	if err != nil {
		return format.Info{}, err
	}
	return format.Tabular(target, coords, attrs), nil
}

// Compare summarises both paths and diffs the rendered summaries.
// Path and size headers are excluded because they always differ.
func Compare(path1, path2, refPath string) (diff.Result, error) {
	info1, err := Summarise(path1, refPath, "")
	if err != nil {
		return diff.Result{}, err
	}
	info2, err := Summarise(path2, refPath, "")
	if err != nil {
		return diff.Result{}, err
	}
	return diff.Compute(fieldText(info1), fieldText(info2), path1, path2), nil
}

func fieldText(info format.Info) string {
	stripped := info
	stripped.Path = ""
	stripped.Size = 0
	return format.Text(stripped)
}
