// Package archive stores observation files in per-source folders.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mcat-go/internal/mcat"
)

const (
	// BandDir is the folder inside a source folder that holds its files.
	BandDir = "m_band"

	bandSuffix = "_band"
	fileGlob   = "*.fits"
)

// FileSystemArchive lays observation files out as:
//
//	<root>/
//	  <full_name>/
//	    m_band/
//	      <short_code>_<epoch>....fits
//	      flagged_obs.dat   (optional)
type FileSystemArchive struct {
	root string
}

// NewFileSystemArchive creates an archive rooted at root. The root folder is
// created on first write.
func NewFileSystemArchive(root string) *FileSystemArchive {
	return &FileSystemArchive{root: root}
}

var _ mcat.Archive = (*FileSystemArchive)(nil)

// Root returns the archive root folder.
func (a *FileSystemArchive) Root() string {
	return a.root
}

func (a *FileSystemArchive) SourceDir(fullName string) string {
	return filepath.Join(a.root, fullName, BandDir)
}

func (a *FileSystemArchive) CreateSource(fullName string) error {
	if err := validName(fullName); err != nil {
		return err
	}
	if err := os.MkdirAll(a.SourceDir(fullName), 0755); err != nil {
		return fmt.Errorf("creating archive folder for %s: %w", fullName, err)
	}
	return nil
}

// Put copies file into the source folder, replacing a file with the same base
// name. The copy becomes visible atomically.
func (a *FileSystemArchive) Put(fullName string, file mcat.IncomingFile) error {
	if err := a.CreateSource(fullName); err != nil {
		return err
	}
	base := filepath.Base(file.Name())
	if base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("invalid file name %q", file.Name())
	}

	data, err := file.ReadBytes()
	if err != nil {
		return fmt.Errorf("reading %s: %w", base, err)
	}
	return writeFile(filepath.Join(a.SourceDir(fullName), base), bytes.NewReader(data), int64(len(data)))
}

// ListObservations returns the observation files of a source in name order.
// A source without a folder has none.
func (a *FileSystemArchive) ListObservations(fullName string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(globEscape(a.SourceDir(fullName)), fileGlob))
	if err != nil {
		return nil, fmt.Errorf("listing observations of %s: %w", fullName, err)
	}
	return files, nil
}

// ListSources returns the names of the top-level source folders, skipping
// band folders that sit directly under the root.
func (a *FileSystemArchive) ListSources() ([]string, error) {
	entries, err := os.ReadDir(a.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing archive root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasSuffix(e.Name(), bandSuffix) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// RemoveSource deletes the folder of a source and everything in it.
func (a *FileSystemArchive) RemoveSource(fullName string) error {
	if err := validName(fullName); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(a.root, fullName)); err != nil {
		return fmt.Errorf("removing archive folder of %s: %w", fullName, err)
	}
	return nil
}

func validName(fullName string) error {
	if fullName == "" || fullName == "." || fullName == ".." || strings.ContainsRune(fullName, filepath.Separator) {
		return fmt.Errorf("invalid source name %q", fullName)
	}
	return nil
}

// globEscape quotes glob metacharacters, which source names may contain.
func globEscape(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// writeFile writes r to destPath through a temp file in the same folder.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
