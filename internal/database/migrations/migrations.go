// Package migrations holds the versioned schema of the source catalog.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// ErrNoVersion is reported for databases that were never migrated.
var ErrNoVersion = errors.New("database has no schema version (needs migration)")

// SchemaStatus describes the migration state of a database.
type SchemaStatus struct {
	Version uint // 0 when never migrated
	Latest  uint
	Dirty   bool
}

// UpToDate reports whether the database matches the embedded migrations.
func (s *SchemaStatus) UpToDate() bool {
	return !s.Dirty && s.Version == s.Latest
}

func (s *SchemaStatus) String() string {
	switch {
	case s.Dirty:
		return fmt.Sprintf("dirty at version %d (migration failed previously)", s.Version)
	case s.Version == 0:
		return fmt.Sprintf("not migrated (latest is %d)", s.Latest)
	case s.Version < s.Latest:
		return fmt.Sprintf("version %d, %d migrations behind %d", s.Version, s.Latest-s.Version, s.Latest)
	case s.Version > s.Latest:
		return fmt.Sprintf("version %d is ahead of binary version %d", s.Version, s.Latest)
	default:
		return fmt.Sprintf("up to date at version %d", s.Version)
	}
}

// Status reads the schema version of db and compares it with the embedded
// migrations.
func Status(db *sql.DB) (*SchemaStatus, error) {
	latest, err := LatestVersion()
	if err != nil {
		return nil, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return nil, err
	}
	// m is not closed: closing it would close db, which the caller owns.

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	return &SchemaStatus{Version: version, Latest: latest, Dirty: dirty}, nil
}

// CheckDBMigrationStatus returns nil when db is at the latest version and an
// error describing the mismatch otherwise.
func CheckDBMigrationStatus(db *sql.DB) error {
	st, err := Status(db)
	if err != nil {
		return err
	}
	if st.Version == 0 && !st.Dirty {
		return ErrNoVersion
	}
	if !st.UpToDate() {
		return fmt.Errorf("database schema %s", st)
	}
	return nil
}

// MigrateUp applies all pending migrations. An up-to-date database is not an error.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// LatestVersion returns the highest embedded migration version.
func LatestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("reading migration files: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("creating migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}

func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			// Next fails once there are no more versions.
			return v, nil
		}
		v = next
	}
}
