// Package inspect extracts ordering and scientific metadata from maser
// observation files.
package inspect

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mcat-go/internal/mcat"
)

// epochIntDigits is the number of leading epoch digits before the implied
// decimal point.
const epochIntDigits = 5

// Epoch parses the epoch token embedded in an observation file name.
// For "s32p74_591234567.fits" the token is "591234567" and the epoch 59123.4567.
func Epoch(file string) (float64, error) {
	base := filepath.Base(file)
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: no epoch field in %s", mcat.ErrMalformedFilename, base)
	}
	token, _, _ := strings.Cut(parts[1], ".")
	if token == "" {
		return 0, fmt.Errorf("%w: empty epoch field in %s", mcat.ErrMalformedFilename, base)
	}
	if len(token) > epochIntDigits {
		token = token[:epochIntDigits] + "." + token[epochIntDigits:]
	}
	epoch, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: epoch %q in %s is not numeric", mcat.ErrMalformedFilename, token, base)
	}
	return epoch, nil
}

// SelectBoundaryFiles returns the files with the smallest and largest epoch.
// Files with equal epochs are ordered by base name so the result does not
// depend on input order.
func SelectBoundaryFiles(files []string) (earliest, latest string, err error) {
	if len(files) == 0 {
		return "", "", fmt.Errorf("%w: no files to order", mcat.ErrMalformedFilename)
	}

	type epochFile struct {
		path  string
		base  string
		epoch float64
	}
	ordered := make([]epochFile, len(files))
	for i, f := range files {
		e, err := Epoch(f)
		if err != nil {
			return "", "", err
		}
		ordered[i] = epochFile{path: f, base: filepath.Base(f), epoch: e}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].epoch != ordered[j].epoch {
			return ordered[i].epoch < ordered[j].epoch
		}
		return ordered[i].base < ordered[j].base
	})
	return ordered[0].path, ordered[len(ordered)-1].path, nil
}
