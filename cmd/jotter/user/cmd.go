package user

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrebq/jotter/auth"
	"github.com/andrebq/jotter/internal/cmdflags"
	"github.com/andrebq/jotter/internal/config"
	"github.com/andrebq/jotter/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var db *store.DB
	var instanceDir string
	var database string
	return &cli.Command{
		Name:  "user",
		Usage: "Manage blog accounts from the command line",
		Flags: []cli.Flag{
			cmdflags.Instance(&instanceDir),
			cmdflags.Database(&database),
		},
		Before: func(ctx *cli.Context) error {
			cfg, err := config.Load(instanceDir, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			if database != "" {
				cfg.Database = database
			}
			db, err = store.Open(ctx.Context, cfg.Database)
			return err
		},
		After: func(ctx *cli.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
		Subcommands: []*cli.Command{
			registerCmd(&db),
		},
	}
}

func registerCmd(db **store.DB) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			conn := (*db).Acquire()
			defer conn.Close()
			svc := auth.NewService(auth.DefaultHasher, nil)
			id, err := svc.Register(ctx.Context, conn, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Registered %v with id %v\n", username, id)
			return nil
		},
	}
}

// readPassword takes the first line of r as the password. Only the line
// ending is dropped, other whitespace is part of the password.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errors.New("missing password from stdin")
	}
	return strings.TrimRight(sc.Text(), "\r\n"), nil
}
