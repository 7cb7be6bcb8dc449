// Package fits reads observation headers from FITS files.
package fits

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"

	"mcat-go/internal/inspect"
)

// HeaderReader reads the header of the first extension HDU of a FITS file,
// where reduced spectra keep their metadata. Files without an extension fall
// back to the primary header.
type HeaderReader struct{}

func NewHeaderReader() *HeaderReader {
	return &HeaderReader{}
}

func (r *HeaderReader) ReadHeader(path string) (inspect.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ff, err := fitsio.Open(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FITS file %s: %w", path, err)
	}
	defer ff.Close()

	hdus := ff.HDUs()
	if len(hdus) == 0 {
		return nil, fmt.Errorf("FITS file %s has no HDU", path)
	}
	hdu := hdus[0]
	if len(hdus) > 1 {
		hdu = hdus[1]
	}

	hdr := hdu.Header()
	out := make(inspect.Header, len(hdr.Keys()))
	for _, key := range hdr.Keys() {
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		out[key] = card.Value
	}
	return out, nil
}

var _ inspect.HeaderReader = (*HeaderReader)(nil)
