package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListPosts returns every post with its author, newest first.
func (c *Conn) ListPosts(ctx context.Context) ([]Post, error) {
	conn, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `select p.id, p.author_id, u.username, p.created, p.title, p.body
	from post p
	inner join user u on p.author_id = u.id
	order by p.created desc, p.id desc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list posts, cause %w", err)
	}
	defer rows.Close()
	var out []Post
	for rows.Next() {
		var p Post
		err = rows.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Created, &p.Title, &p.Body)
		if err != nil {
			return nil, fmt.Errorf("unable to scan post, cause %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list posts, cause %w", err)
	}
	return out, nil
}

func (c *Conn) GetPost(ctx context.Context, id int64) (Post, error) {
	conn, err := c.get(ctx)
	if err != nil {
		return Post{}, err
	}
	var p Post
	err = conn.QueryRowContext(ctx, `select p.id, p.author_id, u.username, p.created, p.title, p.body
	from post p
	inner join user u on p.author_id = u.id
	where p.id = ?`, id).Scan(&p.ID, &p.AuthorID, &p.Author, &p.Created, &p.Title, &p.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, PostNotFound{ID: id}
	} else if err != nil {
		return Post{}, fmt.Errorf("unable to load post %v, cause %w", id, err)
	}
	return p, nil
}

func (c *Conn) CreatePost(ctx context.Context, authorID int64, title, body string) (int64, error) {
	conn, err := c.get(ctx)
	if err != nil {
		return 0, err
	}
	res, err := conn.ExecContext(ctx, `insert into post(title, body, author_id) values (?, ?, ?)`, title, body, authorID)
	if err != nil {
		return 0, fmt.Errorf("unable to create post, cause %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to read id of new post, cause %w", err)
	}
	return id, nil
}

func (c *Conn) UpdatePost(ctx context.Context, id int64, title, body string) error {
	conn, err := c.get(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `update post set title = ?, body = ? where id = ?`, title, body, id)
	if err != nil {
		return fmt.Errorf("unable to update post %v, cause %w", id, err)
	}
	return expectOneRow(res, id)
}

func (c *Conn) DeletePost(ctx context.Context, id int64) error {
	conn, err := c.get(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `delete from post where id = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete post %v, cause %w", id, err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected for post %v, cause %w", id, err)
	}
	if n == 0 {
		return PostNotFound{ID: id}
	}
	return nil
}
