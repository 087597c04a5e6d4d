package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBusyTimeout is how long a writer waits on a locked archive.
const DefaultBusyTimeout = 5 * time.Second

// Options tunes the archive connection. The zero value is usable.
type Options struct {
	// BusyTimeout defaults to DefaultBusyTimeout.
	BusyTimeout time.Duration
	// JournalMode is passed to sqlite as is ("WAL", "DELETE", ...). Empty
	// keeps whatever the file already uses.
	JournalMode string
}

func (o Options) dsn(path string) string {
	timeout := o.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", fmt.Sprint(timeout.Milliseconds()))
	if o.JournalMode != "" {
		q.Set("_journal_mode", strings.ToUpper(o.JournalMode))
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens the archive at path with default options.
func Open(path string) (*sql.DB, error) {
	return OpenWith(path, Options{})
}

// OpenWith opens the archive at path and checks that it is reachable. sqlite
// gets a single connection so writers never race each other.
func OpenWith(path string, opts Options) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", opts.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return db, nil
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on an error or a panic; a panic is re-raised after the rollback.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Now returns the timestamp stored in created_at/updated_at: UTC, truncated
// to seconds like sqlite's CURRENT_TIMESTAMP.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
