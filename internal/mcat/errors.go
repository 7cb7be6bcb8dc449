package mcat

import "errors"

var (
	// ErrNotFound is returned by write paths that require an existing record.
	// Read paths report absence as a nil record instead.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation is returned when a write would break the
	// uniqueness of a full name or short code.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrMalformedFilename is returned when an observation file name does not
	// follow the <short_code>_<epoch>... convention.
	ErrMalformedFilename = errors.New("malformed observation filename")

	// ErrMissingMetadata is returned when a required header keyword is absent.
	ErrMissingMetadata = errors.New("missing header metadata")

	// ErrUnknownSource is returned when a source is not in the reference catalog.
	ErrUnknownSource = errors.New("source not in reference catalog")
)
