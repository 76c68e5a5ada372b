// Package store keeps users and posts in a single SQLite file.
//
// A *DB is shared by the whole process, but handlers never touch it
// directly. Each request acquires a *Conn, which only grabs a connection
// from the pool the first time a query needs one, and gives it back
// when the request ends.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type (
	DB struct {
		db   *sql.DB
		path string
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}

	Post struct {
		ID       int64
		AuthorID int64
		Author   string
		Created  time.Time
		Title    string
		Body     string
	}
)

//go:embed schema.sql
var schema string

// Open opens (creating if needed) the database file at dbpath.
// The schema is not touched, use InitSchema for that.
func Open(ctx context.Context, dbpath string) (*DB, error) {
	err := os.MkdirAll(filepath.Dir(dbpath), 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create directory for database %v, cause %w", dbpath, err)
	}
	connstr := fmt.Sprintf("file:%v?_foreign_keys=on&_journal=wal&_busy_timeout=5000&mode=rwc", dbpath)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", dbpath, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping database %v, cause %w", dbpath, err)
	}
	return &DB{db: conn, path: dbpath}, nil
}

// InitSchema drops every table and creates them again from scratch.
func (d *DB) InitSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("unable to initialize schema on %v, cause %w", d.path, err)
	}
	return nil
}

// Acquire returns a request-scoped handle. No connection is taken from the
// pool until the first query, and Close must be called once the request
// is done.
func (d *DB) Acquire() *Conn {
	return &Conn{db: d.db}
}

func (d *DB) Path() string {
	return d.path
}

// Stats reports the state of the underlying connection pool.
func (d *DB) Stats() sql.DBStats {
	return d.db.Stats()
}

func (d *DB) Close() error {
	return d.db.Close()
}
