package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// Sentinel errors surfaced by the repositories. Duplicate errors are
// mapped from Postgres unique-violation codes so services can report
// field-level conflicts.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need, so
// the same repository code runs inside and outside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction, committing on nil and rolling
// back otherwise.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("[db][tx] rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
