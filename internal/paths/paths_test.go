package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpand(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/data/tracks.trk", filepath.Join(home, "data", "tracks.trk")},
		{"/tmp/tracks.trk", "/tmp/tracks.trk"},
		{"relative.csv", "relative.csv"},
		{"~user/file", "~user/file"}, // named-user shorthand is not expanded
	}

	for _, tt := range tests {
		if got := Expand(tt.input); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(file, []byte("x,y,z\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("existing file", func(t *testing.T) {
		got, err := Validate(file)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if got != file {
			t.Errorf("Validate = %q, want %q", got, file)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Validate(filepath.Join(dir, "missing.csv"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("directory is not a file", func(t *testing.T) {
		_, err := Validate(dir)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	if _, err := ValidateDir(dir); err != nil {
		t.Errorf("ValidateDir(%q) = %v, want nil", dir, err)
	}

	file := filepath.Join(dir, "f.csv")
	_ = os.WriteFile(file, []byte("a"), 0644)
	if _, err := ValidateDir(file); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("error = %v, want ErrNotDirectory", err)
	}

	if _, err := ValidateDir(filepath.Join(dir, "nope")); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"tracks.trk", ".trk"},
		{"tracks.TRK", ".trk"},
		{"brain.nii", ".nii"},
		{"brain.nii.gz", ".nii.gz"},
		{"archive.tar.gz", ".gz"},
		{"data.csv", ".csv"},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := Ext(tt.input); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
