package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mcat-go/internal/archive"
	"mcat-go/internal/config"
	"mcat-go/internal/database"
	"mcat-go/internal/database/migrations"
	"mcat-go/internal/fits"
	"mcat-go/internal/fs"
	"mcat-go/internal/inspect"
	"mcat-go/internal/mcat"
	"mcat-go/internal/refcat"
	"mcat-go/internal/snapshot"
	"mcat-go/internal/stats"
)

// App is the application layer between the CLI and CatalogService.
// It constructs all dependencies from config, records mutating commands in
// the operation history, and snapshots the catalog on Close.
type App struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	archive   *archive.FileSystemArchive
	service   *mcat.CatalogService
	snapshots *snapshot.Snapshotter
	logger    *slog.Logger
	op        *Operation
	lock      *fileLock
	logFile   *os.File
}

// Option overrides a dependency NewApp would otherwise build from config.
type Option func(*options)

type options struct {
	resolver mcat.Resolver
	headers  inspect.HeaderReader
	clock    mcat.Clock
	logOut   io.Writer
}

// WithResolver sets how unknown short codes are mapped to sources.
// Without it unknown codes are skipped.
func WithResolver(r mcat.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithHeaderReader replaces the FITS header reader.
func WithHeaderReader(h inspect.HeaderReader) Option {
	return func(o *options) { o.headers = h }
}

// WithClock sets the clock used for operation and snapshot timestamps.
func WithClock(c mcat.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogOutput sets where log lines go besides the log file. Default stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// NewApp creates a fully wired App from the given config.
// operation names the CLI command being run (e.g. "Ingest", "Rebuild").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, opts ...Option) (*App, error) {
	o := options{
		resolver: mcat.SkipUnknown,
		headers:  fits.NewHeaderReader(),
		clock:    mcat.RealClock{},
		logOut:   os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := openDatabase(cfg.Database, o.clock)
	if err != nil {
		return nil, err
	}

	snaps, err := snapshot.NewSnapshotterFromConfig(context.Background(), cfg.Snapshot, o.clock)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot target: %w", err)
	}

	op := NewOperation(operation, "")
	logger, logFile, err := newLogger(cfg.LogDir, op.RunID, o.logOut)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	arc := archive.NewFileSystemArchive(cfg.ArchiveRoot)
	svc := mcat.NewCatalogService(
		db,
		arc,
		refcat.NewCatalog(cfg.CatalogFile),
		stats.NewDeriver(o.headers),
		o.resolver,
		&slogAdapter{l: logger},
		cfg.Ingest.SkipCodes,
	)

	return &App{
		cfg:       cfg,
		db:        db,
		archive:   arc,
		service:   svc,
		snapshots: snaps,
		logger:    logger,
		op:        op,
		logFile:   logFile,
	}, nil
}

// openDatabase opens the catalog and makes sure its schema is current.
// A database without any schema is initialized; one at an older version
// must be migrated explicitly with "mcat db migrate".
func openDatabase(cfg config.DatabaseConfig, clock mcat.Clock) (*database.SQLiteDatabase, error) {
	db, err := database.NewDatabaseFromConfig(cfg, clock)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	err = db.CheckMigrations()
	switch {
	case err == nil:
		return db, nil
	case errors.Is(err, migrations.ErrNoVersion):
		if err := db.CreateTable(); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		return db, nil
	default:
		db.Close()
		return nil, fmt.Errorf("database schema out of date (run \"mcat db migrate\"): %w", err)
	}
}

// MigrateDatabase applies pending schema migrations to the configured
// database and returns the resulting status.
func MigrateDatabase(cfg *config.Config) (*migrations.SchemaStatus, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.CreateTable(); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db.SchemaStatus()
}

// persistOperation takes the catalog lock and saves the operation to the
// history, giving it an auto-increment ID.
// This should only be called for catalog-mutating commands.
func (a *App) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}

	if a.lock == nil && a.db.Path() != ":memory:" {
		lock, err := acquireLock(a.db.Path() + ".lock")
		if err != nil {
			return err
		}
		a.lock = lock
	}

	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Name, a.op.Parameters, a.op.RunID)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	a.logger.Info("operation started", "operation", a.op.Name, "id", a.op.ID, "parameters", parameters)
	return nil
}

// track marks the operation failed when err is non-nil and passes err through.
func (a *App) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// Ingest finds observation files under the given paths and ingests them.
// When recursive is true, files in subdirectories are included.
func (a *App) Ingest(rawPaths []string, recursive bool) (*mcat.IngestReport, error) {
	if err := a.persistOperation(strings.Join(rawPaths, " ")); err != nil {
		return nil, err
	}
	files, err := fs.FindObservations(rawPaths, recursive)
	if err != nil {
		return nil, a.track(err)
	}
	if len(files) == 0 {
		return &mcat.IngestReport{}, nil
	}
	report, err := a.service.Ingest(files)
	return report, a.track(err)
}

// IngestTar ingests the observation files contained in a tar stream.
// name describes the stream in the operation history.
func (a *App) IngestTar(r io.Reader, name string) (*mcat.IngestReport, error) {
	if err := a.persistOperation("tar:" + name); err != nil {
		return nil, err
	}
	files, err := fs.ReadTar(r)
	if err != nil {
		return nil, a.track(err)
	}
	if len(files) == 0 {
		return &mcat.IngestReport{}, nil
	}
	report, err := a.service.Ingest(files)
	return report, a.track(err)
}

// Rebuild recreates the catalog from the archive. Returns the number of sources.
func (a *App) Rebuild() (int, error) {
	if err := a.persistOperation(a.cfg.ArchiveRoot); err != nil {
		return 0, err
	}
	n, err := a.service.Rebuild()
	return n, a.track(err)
}

// AddSource registers a source from the reference catalog.
func (a *App) AddSource(fullName, shortCode string) (*mcat.SourceRecord, error) {
	if err := a.persistOperation(strings.TrimSpace(fullName + " " + shortCode)); err != nil {
		return nil, err
	}
	rec, err := a.service.CreateSource(fullName, shortCode)
	return rec, a.track(err)
}

// RefreshSource recomputes the statistics of one source from its folder.
func (a *App) RefreshSource(fullName string) (*mcat.SourceRecord, error) {
	if err := a.persistOperation(fullName); err != nil {
		return nil, err
	}
	rec, err := a.service.RefreshSource(fullName)
	return rec, a.track(err)
}

// DeleteSource removes a source record, and its folder when purge is set.
func (a *App) DeleteSource(fullName string, purge bool) error {
	params := fullName
	if purge {
		params += " --purge"
	}
	if err := a.persistOperation(params); err != nil {
		return err
	}
	return a.track(a.service.DeleteSource(fullName, purge))
}

// ShowSource returns one record, or nil if there is none.
func (a *App) ShowSource(fullName string) (*mcat.SourceRecord, error) {
	return a.service.GetSource(fullName)
}

// ListSources returns all records in insertion order.
func (a *App) ListSources() ([]*mcat.SourceRecord, error) {
	return a.service.ListSources()
}

// ArchiveFolders returns the names of the source folders in the archive.
func (a *App) ArchiveFolders() ([]string, error) {
	return a.archive.ListSources()
}

// History returns the most recent operations, newest first.
func (a *App) History(limit int) ([]*mcat.Operation, error) {
	return a.db.ListOperations(limit)
}

// DBStatus reports the schema version of the catalog.
func (a *App) DBStatus() (*migrations.SchemaStatus, error) {
	return a.db.SchemaStatus()
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record and stores a
// catalog snapshot when a target is configured.
// For non-persisted operations: just closes the database.
func (a *App) Close() error {
	var errs []error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}

		if a.snapshots != nil {
			name, err := a.snapshots.Take(context.Background(), a.db, a.op.ID)
			if err != nil {
				errs = append(errs, fmt.Errorf("taking snapshot: %w", err))
			} else {
				a.logger.Info("snapshot stored", "name", name)
			}
		}
		a.logger.Info("operation finished", "operation", a.op.Name, "id", a.op.ID, "status", a.op.Status)
	}

	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}
	if a.lock != nil {
		if err := a.lock.Release(); err != nil {
			errs = append(errs, fmt.Errorf("releasing lock: %w", err))
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return errors.Join(errs...)
}
