package store

import (
	"context"
	"database/sql"
	"fmt"
)

type (
	// Conn is bound to a single request and must not be shared
	// between goroutines.
	Conn struct {
		db   *sql.DB
		conn *sql.Conn
	}
)

func (c *Conn) get(ctx context.Context) (*sql.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to acquire database connection, cause %w", err)
	}
	c.conn = conn
	return c.conn, nil
}

// Acquired reports whether a pooled connection is currently held.
func (c *Conn) Acquired() bool {
	return c.conn != nil
}

// Close returns the connection to the pool, if one was taken.
// It is safe to call Close more than once.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
