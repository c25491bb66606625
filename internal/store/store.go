// Package store persists attribute resource documents in a SQL database and
// caches them in memory or redis.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Document is one stored resource document. Body holds the serialized
// resource; Version is the document format version it was written with.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Body      string    `json:"body,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Documents is the persistence interface used by the workspace and the API
type Documents interface {
	Create(ctx context.Context, doc *Document) error
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	GetByName(ctx context.Context, name string) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Replace removes the document with oldID and saves doc atomically
	Replace(ctx context.Context, oldID uuid.UUID, doc *Document) error
}

// Store is a Documents implementation over database/sql
type Store struct {
	db     *sql.DB
	driver string
	table  string
}

// Open connects to the database named by driver and dsn
func Open(driver, dsn, table string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a :memory: database only lives as long as its connection
		db.SetMaxOpenConns(1)
	}
	return New(db, driver, table), nil
}

// New wraps an open database
func New(db *sql.DB, driver, table string) *Store {
	return &Store{db: db, driver: driver, table: pq.QuoteIdentifier(table)}
}

// DB returns the underlying database
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

// ph returns the n-th (1-based) bind placeholder for the driver
func (s *Store) ph(n int) string {
	if s.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *Store) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s.ph(i + 1)
	}
	return strings.Join(parts, ", ")
}

// Migrate creates the document table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	stamp := "TIMESTAMP"
	if s.driver == DriverPostgres {
		stamp = "TIMESTAMPTZ"
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	version INTEGER NOT NULL,
	body TEXT NOT NULL,
	updated_at %s NOT NULL
)`, s.table, stamp)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Create inserts a new document. A taken id or name yields ErrDocumentExists.
func (s *Store) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf("INSERT INTO %s (id, name, version, body, updated_at) VALUES (%s)",
		s.table, s.placeholders(5))
	_, err := s.db.ExecContext(ctx, query, doc.ID.String(), doc.Name, doc.Version, doc.Body, doc.UpdatedAt)
	return convertDBError(err)
}

// Save inserts or replaces the document with doc.ID
func (s *Store) Save(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.upsertQuery(), doc.ID.String(), doc.Name, doc.Version, doc.Body, doc.UpdatedAt)
	return convertDBError(err)
}

func (s *Store) upsertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (id, name, version, body, updated_at) VALUES (%s)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, version = excluded.version,
body = excluded.body, updated_at = excluded.updated_at`, s.table, s.placeholders(5))
}

// Replace deletes the document with oldID and saves doc in one transaction.
// On failure the old document is left in place.
func (s *Store) Replace(ctx context.Context, oldID uuid.UUID, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if oldID != doc.ID {
		query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", s.table, s.ph(1))
		if _, err := tx.ExecContext(ctx, query, oldID.String()); err != nil {
			return convertDBError(err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.upsertQuery(), doc.ID.String(), doc.Name, doc.Version, doc.Body, doc.UpdatedAt); err != nil {
		return convertDBError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// Get loads the document with id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := fmt.Sprintf("SELECT id, name, version, body, updated_at FROM %s WHERE id = %s", s.table, s.ph(1))
	return s.scanOne(s.db.QueryRowContext(ctx, query, id.String()))
}

// GetByName loads the document called name
func (s *Store) GetByName(ctx context.Context, name string) (*Document, error) {
	query := fmt.Sprintf("SELECT id, name, version, body, updated_at FROM %s WHERE name = %s", s.table, s.ph(1))
	return s.scanOne(s.db.QueryRowContext(ctx, query, name))
}

func (s *Store) scanOne(row *sql.Row) (*Document, error) {
	var doc Document
	var id string
	if err := row.Scan(&id, &doc.Name, &doc.Version, &doc.Body, &doc.UpdatedAt); err != nil {
		return nil, convertDBError(err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("document %q has a malformed id: %w", doc.Name, err)
	}
	doc.ID = parsed
	return &doc, nil
}

// List returns every document without its body, ordered by name
func (s *Store) List(ctx context.Context) ([]Document, error) {
	query := fmt.Sprintf("SELECT id, name, version, updated_at FROM %s ORDER BY name", s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, convertDBError(err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var id string
		if err := rows.Scan(&id, &doc.Name, &doc.Version, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if doc.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("document %q has a malformed id: %w", doc.Name, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes the document with id
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", s.table, s.ph(1))
	result, err := s.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return convertDBError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
