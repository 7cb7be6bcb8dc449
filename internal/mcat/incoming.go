package mcat

import "path/filepath"

// IncomingFile is an observation file offered for ingestion, either a path on
// disk or an uploaded blob.
type IncomingFile interface {
	// Name returns the file name. Only its base name is significant.
	Name() string

	// ReadBytes returns the whole file content.
	ReadBytes() ([]byte, error)
}

// UploadedFile is an IncomingFile held in memory.
type UploadedFile struct {
	name string
	data []byte
}

// NewUploadedFile wraps data received under the given name.
func NewUploadedFile(name string, data []byte) *UploadedFile {
	return &UploadedFile{name: filepath.Base(name), data: data}
}

func (f *UploadedFile) Name() string { return f.name }

func (f *UploadedFile) ReadBytes() ([]byte, error) { return f.data, nil }

var _ IncomingFile = (*UploadedFile)(nil)
