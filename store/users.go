package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// InsertUser stores a new user and returns its id. If username is already
// taken the error is DuplicateUsername; the unique constraint on the table
// decides who wins when two requests race for the same name.
func (c *Conn) InsertUser(ctx context.Context, username, passwordHash string) (int64, error) {
	conn, err := c.get(ctx)
	if err != nil {
		return 0, err
	}
	res, err := conn.ExecContext(ctx, `insert into user(username, password) values (?, ?)`, username, passwordHash)
	if isUniqueViolation(err) {
		return 0, DuplicateUsername{Username: username}
	} else if err != nil {
		return 0, fmt.Errorf("unable to insert user %v, cause %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to read id of user %v, cause %w", username, err)
	}
	return id, nil
}

func (c *Conn) FindUserByUsername(ctx context.Context, username string) (User, error) {
	conn, err := c.get(ctx)
	if err != nil {
		return User{}, err
	}
	var u User
	err = conn.QueryRowContext(ctx, `select id, username, password from user where username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to lookup user %v, cause %w", username, err)
	}
	return u, nil
}

func (c *Conn) FindUserByID(ctx context.Context, id int64) (User, error) {
	conn, err := c.get(ctx)
	if err != nil {
		return User{}, err
	}
	var u User
	err = conn.QueryRowContext(ctx, `select id, username, password from user where id = ?`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{ID: id}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to lookup user with id %v, cause %w", id, err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
