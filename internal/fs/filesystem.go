// Package fs turns command-line paths and tar streams into incoming
// observation files.
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mcat-go/internal/mcat"
)

// ObservationExt is the extension of observation files picked up from directories.
const ObservationExt = ".fits"

// PathFile is an observation file on disk.
type PathFile struct {
	path string
}

func NewPathFile(path string) *PathFile {
	return &PathFile{path: path}
}

func (f *PathFile) Name() string { return f.path }

func (f *PathFile) ReadBytes() ([]byte, error) {
	return os.ReadFile(f.path)
}

var _ mcat.IncomingFile = (*PathFile)(nil)

// Resolve returns the absolute form of rawPath with its file info.
// Only regular files and directories are accepted.
func Resolve(rawPath string) (string, fs.FileInfo, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 || mode&os.ModeNamedPipe != 0 || mode&os.ModeSocket != 0 {
		return "", nil, fmt.Errorf("not a regular file or directory: %s", absPath)
	}
	return absPath, info, nil
}

// FindObservations expands rawPaths into observation files. Files are taken
// as given; directories contribute their *.fits files, including those in
// subdirectories when recursive is set. The result is sorted by path and
// holds each file once.
func FindObservations(rawPaths []string, recursive bool) ([]mcat.IncomingFile, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, raw := range rawPaths {
		absPath, info, err := Resolve(raw)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(absPath)
			continue
		}
		found, err := findInDir(absPath, recursive)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}

	sort.Strings(paths)
	files := make([]mcat.IncomingFile, len(paths))
	for i, p := range paths {
		files[i] = NewPathFile(p)
	}
	return files, nil
}

func findInDir(dir string, recursive bool) ([]string, error) {
	var found []string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && isObservation(e.Name()) {
				found = append(found, filepath.Join(dir, e.Name()))
			}
		}
		return found, nil
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && isObservation(d.Name()) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return found, nil
}

func isObservation(name string) bool {
	return strings.HasSuffix(name, ObservationExt) && !strings.HasPrefix(name, ".")
}
