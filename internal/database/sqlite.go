package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"mcat-go/internal/database/migrations"
	"mcat-go/internal/mcat"
)

const sourceColumns = `id, name, ra, dec, short_name, v_lsr, obs_first, obs_latest, obs_number, mean_cadence_per_month`

// SQLiteDatabase implements mcat.Store and mcat.OperationLog on a SQLite file.
type SQLiteDatabase struct {
	db    *sql.DB
	path  string
	clock mcat.Clock
}

// NewSQLiteDatabase opens the catalog at path, which can be a file path or
// ":memory:". A nil clock uses the wall clock.
func NewSQLiteDatabase(path string, clock mcat.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteDatabaseFromDB(db, path, clock), nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection. The caller is
// responsible for having configured it with OpenConnection.
func NewSQLiteDatabaseFromDB(db *sql.DB, path string, clock mcat.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = mcat.RealClock{}
	}
	return &SQLiteDatabase{db: db, path: path, clock: clock}
}

// OpenConnection opens and configures a SQLite connection pool.
// The pool is limited to one connection: an in-memory database exists per
// connection, and the catalog has a single writer anyway.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// CreateTable brings the schema up to date. Running it again is a no-op.
func (s *SQLiteDatabase) CreateTable() error {
	if err := migrations.MigrateUp(s.db); err != nil {
		return fmt.Errorf("creating source table: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *SQLiteDatabase) Insert(rec *mcat.SourceRecord) (int64, error) {
	return insertSource(s.db, rec)
}

func insertSource(db execer, rec *mcat.SourceRecord) (int64, error) {
	res, err := db.Exec(`INSERT INTO sources (name, ra, dec, short_name, v_lsr, obs_first, obs_latest, obs_number, mean_cadence_per_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FullName, rec.RA, rec.Dec, rec.ShortCode, rec.SystemicVelocity,
		rec.FirstObservation, rec.LastObservation, rec.ObservationCount, rec.MeanCadencePerMonth)
	if err != nil {
		return 0, fmt.Errorf("inserting source %s: %w", rec.FullName, translateError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading id of source %s: %w", rec.FullName, err)
	}
	rec.ID = id
	return id, nil
}

// UpdateByName overwrites every column of the row named rec.FullName.
// The row keeps its id, which is also copied into rec.
func (s *SQLiteDatabase) UpdateByName(rec *mcat.SourceRecord) error {
	existing, err := s.GetByFullName(rec.FullName)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("updating source %s: %w", rec.FullName, mcat.ErrNotFound)
	}

	_, err = s.db.Exec(`UPDATE sources SET ra = ?, dec = ?, short_name = ?, v_lsr = ?, obs_first = ?,
		obs_latest = ?, obs_number = ?, mean_cadence_per_month = ? WHERE id = ?`,
		rec.RA, rec.Dec, rec.ShortCode, rec.SystemicVelocity, rec.FirstObservation,
		rec.LastObservation, rec.ObservationCount, rec.MeanCadencePerMonth, existing.ID)
	if err != nil {
		return fmt.Errorf("updating source %s: %w", rec.FullName, translateError(err))
	}
	rec.ID = existing.ID
	return nil
}

// DeleteByName removes the named source. Deleting an absent name is not an error.
func (s *SQLiteDatabase) DeleteByName(name string) error {
	if _, err := s.db.Exec("DELETE FROM sources WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting source %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteAll() error {
	if _, err := s.db.Exec("DELETE FROM sources"); err != nil {
		return fmt.Errorf("deleting all sources: %w", err)
	}
	return nil
}

// ReplaceAll deletes every source and inserts records in a single
// transaction. Ids of the new rows are copied into records only on success.
func (s *SQLiteDatabase) ReplaceAll(records []*mcat.SourceRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sources"); err != nil {
		return fmt.Errorf("deleting all sources: %w", err)
	}
	ids := make([]int64, len(records))
	for i, rec := range records {
		copied := *rec
		id, err := insertSource(tx, &copied)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sources: %w", err)
	}
	for i, rec := range records {
		rec.ID = ids[i]
	}
	return nil
}

func (s *SQLiteDatabase) GetByFullName(name string) (*mcat.SourceRecord, error) {
	rec, err := scanSource(s.db.QueryRow("SELECT "+sourceColumns+" FROM sources WHERE name = ?", name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding source by name: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDatabase) GetByShortCode(code string) (*mcat.SourceRecord, error) {
	rec, err := scanSource(s.db.QueryRow("SELECT "+sourceColumns+" FROM sources WHERE short_name = ? ORDER BY id LIMIT 1", code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding source by short name: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDatabase) GetAll() ([]*mcat.SourceRecord, error) {
	rows, err := s.db.Query("SELECT " + sourceColumns + " FROM sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var result []*mcat.SourceRecord
	for rows.Next() {
		rec, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSource reads one sources row. Legacy catalogs may hold NULLs in every
// column but id and name; they read as zero values.
func scanSource(row rowScanner) (*mcat.SourceRecord, error) {
	var (
		rec                               mcat.SourceRecord
		ra, dec, shortName, first, latest sql.NullString
		vlsr, cadence                     sql.NullFloat64
		count                             sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.FullName, &ra, &dec, &shortName, &vlsr, &first, &latest, &count, &cadence); err != nil {
		return nil, err
	}
	rec.RA = ra.String
	rec.Dec = dec.String
	rec.ShortCode = shortName.String
	rec.SystemicVelocity = vlsr.Float64
	rec.FirstObservation = first.String
	rec.LastObservation = latest.String
	rec.ObservationCount = int(count.Int64)
	rec.MeanCadencePerMonth = cadence.Float64
	return &rec, nil
}

// translateError maps SQLite constraint failures to mcat.ErrConstraintViolation.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s", mcat.ErrConstraintViolation, sqliteErr.Error())
	}
	return err
}

// Operation history

func (s *SQLiteDatabase) CreateOperation(operation, parameters, runID string) (*mcat.Operation, error) {
	startedAt := s.clock.Now().UTC()
	res, err := s.db.Exec(`INSERT INTO operations (run_id, operation, parameters, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, operation, parameters, mcat.StatusRunning, startedAt)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}
	return &mcat.Operation{
		ID:         id,
		RunID:      runID,
		Operation:  operation,
		Parameters: parameters,
		Status:     mcat.StatusRunning,
		StartedAt:  startedAt,
	}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	res, err := s.db.Exec("UPDATE operations SET status = ?, finished_at = ? WHERE id = ?", status, s.clock.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing operation %d: %w", id, mcat.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*mcat.Operation, error) {
	rows, err := s.db.Query(`SELECT id, run_id, operation, parameters, status, started_at, finished_at
		FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var result []*mcat.Operation
	for rows.Next() {
		var (
			op       mcat.Operation
			finished sql.NullTime
		)
		if err := rows.Scan(&op.ID, &op.RunID, &op.Operation, &op.Parameters, &op.Status, &op.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		result = append(result, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// SchemaStatus reports the migration state of the database.
func (s *SQLiteDatabase) SchemaStatus() (*migrations.SchemaStatus, error) {
	return migrations.Status(s.db)
}

// BackupTo writes a consistent copy of the database to destPath using VACUUM INTO.
// destPath must not exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var (
	_ mcat.Store        = (*SQLiteDatabase)(nil)
	_ mcat.OperationLog = (*SQLiteDatabase)(nil)
)
