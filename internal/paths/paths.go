// Package paths provides filesystem path expansion and validation.
//
// Every loader in this module passes its input path through this package
// before touching the filesystem, so "file not found" failures surface as
// one sentinel error regardless of format.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the path does not exist or is not a regular file.
var ErrNotFound = errors.New("file not found")

// ErrNotDirectory indicates the path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Expand resolves a leading "~" to the user's home directory.
// Paths without the shorthand are returned unchanged. If the home
// directory cannot be determined the path is returned as-is and the
// subsequent stat will fail with a clear error.
func Expand(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}

// Validate expands p and verifies it refers to an existing regular file.
// Returns the expanded path, or ErrNotFound (wrapped with the path) when
// the file is missing, unreadable, or not a regular file.
func Validate(p string) (string, error) {
	expanded := Expand(p)
	info, err := os.Stat(expanded)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s does not exist or is not a file", ErrNotFound, expanded)
	}
	return expanded, nil
}

// ValidateDir expands p and verifies it refers to an existing directory.
func ValidateDir(p string) (string, error) {
	expanded := Expand(p)
	info, err := os.Stat(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, expanded)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, expanded)
	}
	return expanded, nil
}

// IsDir reports whether the expanded path exists and is a directory.
func IsDir(p string) bool {
	info, err := os.Stat(Expand(p))
	return err == nil && info.IsDir()
}

// Ext returns the lowercased extension of p including the dot.
// Handles the double extension of compressed NIfTI files (".nii.gz").
func Ext(p string) string {
	ext := strings.ToLower(filepath.Ext(p))
	if ext == ".gz" {
		inner := strings.ToLower(filepath.Ext(strings.TrimSuffix(p, filepath.Ext(p))))
		if inner == ".nii" {
			return ".nii.gz"
		}
	}
	return ext
}
