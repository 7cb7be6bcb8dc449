package mcat

// Archive abstracts the on-disk archive layout:
//
//	<root>/<full_name>/m_band/<short_code>_<epoch>....fits
type Archive interface {
	// SourceDir returns the folder holding the observation files of a source.
	SourceDir(fullName string) string

	// CreateSource creates the folder structure for a source.
	// It succeeds if the folders already exist.
	CreateSource(fullName string) error

	// Put writes an incoming file into the source folder under its base name,
	// replacing any file with the same name.
	Put(fullName string, file IncomingFile) error

	// ListObservations returns the paths of all observation files of a source.
	ListObservations(fullName string) ([]string, error)

	// ListSources returns the full names of all sources with an archive folder.
	ListSources() ([]string, error)

	// RemoveSource deletes the folder of a source with all its files.
	RemoveSource(fullName string) error
}
