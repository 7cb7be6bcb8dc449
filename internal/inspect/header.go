package inspect

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"mcat-go/internal/mcat"
)

const (
	// KeyObservationTime holds the ISO-8601 start time of an observation.
	KeyObservationTime = "DATE-OBS"
	// KeySystemicVelocity holds the source systemic velocity in km/s.
	KeySystemicVelocity = "VSYS"
)

// Header is the keyword/value header of an observation file.
type Header map[string]any

// HeaderReader reads the metadata header of an observation file.
type HeaderReader interface {
	ReadHeader(path string) (Header, error)
}

// ReadObservationTimestamp returns the DATE-OBS value of file.
func ReadObservationTimestamp(h HeaderReader, file string) (string, error) {
	hdr, err := h.ReadHeader(file)
	if err != nil {
		return "", fmt.Errorf("reading header of %s: %w", filepath.Base(file), err)
	}
	v, ok := hdr[KeyObservationTime]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s in %s", mcat.ErrMissingMetadata, KeyObservationTime, filepath.Base(file))
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", fmt.Errorf("%w: empty %s in %s", mcat.ErrMissingMetadata, KeyObservationTime, filepath.Base(file))
	}
	return s, nil
}

// ReadSystemicVelocity returns the VSYS value of file.
func ReadSystemicVelocity(h HeaderReader, file string) (float64, error) {
	hdr, err := h.ReadHeader(file)
	if err != nil {
		return 0, fmt.Errorf("reading header of %s: %w", filepath.Base(file), err)
	}
	v, ok := hdr[KeySystemicVelocity]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %s in %s", mcat.ErrMissingMetadata, KeySystemicVelocity, filepath.Base(file))
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s in %s is not numeric (%v)", mcat.ErrMissingMetadata, KeySystemicVelocity, filepath.Base(file), v)
}
