package fs

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"

	"mcat-go/internal/mcat"
)

// maxUploadSize bounds a single file read from a tar stream.
const maxUploadSize = 256 << 20

// ReadTar reads the observation files of a tar stream into memory. Entries
// that are not regular *.fits files are ignored; directories inside the
// stream do not matter, only base names are kept.
func ReadTar(r io.Reader) ([]mcat.IncomingFile, error) {
	tr := tar.NewReader(r)

	var files []mcat.IncomingFile
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar stream: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isObservation(path.Base(hdr.Name)) {
			continue
		}
		if hdr.Size > maxUploadSize {
			return nil, fmt.Errorf("tar entry %s is too large (%d bytes)", hdr.Name, hdr.Size)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading tar entry %s: %w", hdr.Name, err)
		}
		files = append(files, mcat.NewUploadedFile(path.Base(hdr.Name), data))
	}
	return files, nil
}
