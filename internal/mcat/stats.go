package mcat

// StatsDeriver computes the derived statistics of a source from the files in
// its archive folder.
type StatsDeriver interface {
	Derive(files []string, sourceFolder string) (*SourceStats, error)

	// CheckName returns an error wrapping ErrMalformedFilename when name
	// cannot be ordered by Derive.
	CheckName(name string) error
}
