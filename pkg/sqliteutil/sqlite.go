// Package sqliteutil opens SQLite databases with the pragmas the stores rely on.
package sqliteutil

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// OpenDB opens the database at path, creating its directory if needed.
// Writes are serialized through a single connection.
func OpenDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database dir %q: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?"+pragmas)
	if err != nil {
		return nil, explain(path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, explain(path, err)
	}

	return db, nil
}

// IsCantOpenError reports whether err is SQLITE_CANTOPEN.
func IsCantOpenError(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CANTOPEN
	}
	return false
}

func explain(path string, err error) error {
	if !IsCantOpenError(err) {
		return err
	}

	dir := filepath.Dir(path)
	info, statErr := os.Stat(dir)
	switch {
	case statErr != nil:
		return fmt.Errorf("cannot open database %q: %w", path, statErr)
	case !info.IsDir():
		return fmt.Errorf("cannot open database %q: %q is not a directory", path, dir)
	default:
		return fmt.Errorf("cannot open database %q: %w", path, err)
	}
}
