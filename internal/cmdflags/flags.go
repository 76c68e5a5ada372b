package cmdflags

import (
	"github.com/urfave/cli/v2"
)

func Instance(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "instance"
	}
	return &cli.StringFlag{
		Name:        "instance",
		Aliases:     []string{"i"},
		Usage:       "Instance directory, holds config.lua and the default database",
		Destination: out,
		Value:       *out,
		EnvVars:     []string{"JOTTER_INSTANCE"},
	}
}

func Database(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "database",
		Aliases:     []string{"db"},
		Usage:       "Path to the sqlite database (defaults to the one inside the instance directory)",
		Destination: out,
		Value:       *out,
	}
}
