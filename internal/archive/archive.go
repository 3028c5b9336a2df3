// Package archive persists a record of every successful Horizons fetch in an
// embedded SQLite database, including the raw response text, so past queries
// can be inspected or re-parsed without hitting the service again.
package archive

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Record is one archived fetch: the query fields as sent, the parsed table's
// dimensions, and the raw response body.
type Record struct {
	ID               uuid.UUID `db:"id"`
	FetchedAt        time.Time `db:"fetched_at"`
	TargetBody       string    `db:"target_body"`
	StartTime        string    `db:"start_time"`
	StopTime         string    `db:"stop_time"`
	ObserverLocation string    `db:"observer_location"`
	StepSize         string    `db:"step_size"`
	Quantities       string    `db:"quantities"`
	RowCount         int       `db:"row_count"`
	ColumnCount      int       `db:"column_count"`
	RawText          string    `db:"raw_text"`
}

// ErrNotFound is returned by Get when no record carries the requested id.
var ErrNotFound = errors.New("archive record not found")

// Store provides access to the fetch archive.
type Store struct {
	dbConn *sqlx.DB
}

// Open connects to the SQLite database at path, applies pending migrations,
// and returns a ready Store. WAL mode keeps readers from blocking the writer.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to archive db: %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return &Store{dbConn: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if err := s.dbConn.Close(); err != nil {
		return fmt.Errorf("closing archive db: %w", err)
	}
	return nil
}

// Insert saves one fetch record. The record's ID must be set by the caller.
func (s *Store) Insert(rec *Record) error {
	query := `INSERT INTO fetches (id, fetched_at, target_body, start_time, stop_time,
	                               observer_location, step_size, quantities,
	                               row_count, column_count, raw_text)
	          VALUES (:id, :fetched_at, :target_body, :start_time, :stop_time,
	                  :observer_location, :step_size, :quantities,
	                  :row_count, :column_count, :raw_text)`
	if _, err := s.dbConn.NamedExec(query, rec); err != nil {
		return fmt.Errorf("inserting fetch record %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first, without the raw response
// bodies.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []Record
	query := `SELECT id, fetched_at, target_body, start_time, stop_time,
	                 observer_location, step_size, quantities, row_count, column_count,
	                 '' AS raw_text
	          FROM fetches ORDER BY fetched_at DESC LIMIT ?`
	if err := s.dbConn.Select(&recs, query, limit); err != nil {
		return nil, fmt.Errorf("listing fetch records: %w", err)
	}
	return recs, nil
}

// Get returns the full record, raw response included, for one id.
func (s *Store) Get(id uuid.UUID) (*Record, error) {
	var rec Record
	err := s.dbConn.Get(&rec, `SELECT * FROM fetches WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading fetch record %s: %w", id, err)
	}
	return &rec, nil
}
