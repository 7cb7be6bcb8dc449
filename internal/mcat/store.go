package mcat

// Store provides access to the source catalog table.
// Lookups report a missing row as a nil record and a nil error.
type Store interface {
	// CreateTable creates the catalog schema if it does not exist yet.
	// Calling it on an up-to-date database is a no-op.
	CreateTable() error

	// Insert adds a record and returns its newly assigned id.
	// Returns ErrConstraintViolation if the full name or short code is taken.
	Insert(record *SourceRecord) (int64, error)

	// UpdateByName overwrites every non-id field of the record whose full
	// name equals record.FullName. Returns ErrNotFound if there is none.
	UpdateByName(record *SourceRecord) error

	// DeleteByName removes the record with the given full name.
	// Deleting a name that does not exist is not an error.
	DeleteByName(name string) error

	// DeleteAll removes every record.
	DeleteAll() error

	// ReplaceAll swaps the whole catalog for records in one transaction.
	// On error the previous rows are left untouched.
	ReplaceAll(records []*SourceRecord) error

	// GetByFullName returns the record with the given full name.
	GetByFullName(name string) (*SourceRecord, error)

	// GetByShortCode returns the record with the given short code.
	GetByShortCode(code string) (*SourceRecord, error)

	// GetAll returns every record ordered by id.
	GetAll() ([]*SourceRecord, error)

	// Close closes the underlying connection.
	Close() error
}
