package initdb

import (
	"fmt"
	"os"

	"github.com/andrebq/jotter/internal/cmdflags"
	"github.com/andrebq/jotter/internal/config"
	"github.com/andrebq/jotter/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var instanceDir string
	var database string
	return &cli.Command{
		Name:  "init-db",
		Usage: "Clear existing data and create new tables",
		Flags: []cli.Flag{
			cmdflags.Instance(&instanceDir),
			cmdflags.Database(&database),
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load(instanceDir, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			if database != "" {
				cfg.Database = database
			}
			db, err := store.Open(ctx.Context, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			err = db.InitSchema(ctx.Context)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, "Initialized the database.")
			return nil
		},
	}
}
