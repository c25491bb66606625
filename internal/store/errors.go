package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDocumentNotFound is returned when no document matches the lookup
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentExists is returned when a document id or name is taken
	ErrDocumentExists = errors.New("document already exists")
)

// convertDBError maps driver errors onto the store's sentinels
func convertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrDocumentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%w: %s", ErrDocumentExists, pgErr.Detail)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrDocumentExists, liteErr.Error())
		}
	}

	return err
}

// IsNotFound returns true if the error is ErrDocumentNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

// IsExists returns true if the error is ErrDocumentExists
func IsExists(err error) bool {
	return errors.Is(err, ErrDocumentExists)
}
