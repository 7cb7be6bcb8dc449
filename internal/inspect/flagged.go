package inspect

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FlagFileName is the per-source list of observation files to exclude.
	FlagFileName = "flagged_obs.dat"

	// BadReductionSuffix marks files from a known-bad reduction variant.
	// They are excluded whether or not they are listed.
	BadReductionSuffix = "noedt.fits"
)

// ParseFlagFile reads a flag list and returns the base names it excludes.
// Only the first whitespace-separated field of a line is used; blank lines
// and lines starting with '#' are skipped.
// Returns nil and no error if the file does not exist.
func ParseFlagFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening flag file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		names = append(names, filepath.Base(fields[0]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading flag file: %w", err)
	}
	return names, nil
}

// FilterFlagged returns the files that are neither listed in the flag file of
// sourceFolder nor named with the bad reduction suffix.
// Both rules only apply when the flag file exists; without it the files are
// returned unchanged. The input slice is never modified.
func FilterFlagged(files []string, sourceFolder string) ([]string, error) {
	flagPath := filepath.Join(sourceFolder, FlagFileName)
	if _, err := os.Stat(flagPath); err != nil {
		if os.IsNotExist(err) {
			return files, nil
		}
		return nil, fmt.Errorf("checking flag file: %w", err)
	}

	names, err := ParseFlagFile(flagPath)
	if err != nil {
		return nil, err
	}
	flagged := make(map[string]bool, len(names))
	for _, n := range names {
		flagged[n] = true
	}

	kept := make([]string, 0, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		if flagged[base] || strings.HasSuffix(base, BadReductionSuffix) {
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}
