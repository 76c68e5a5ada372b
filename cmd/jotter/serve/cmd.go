package serve

import (
	"fmt"
	"os"

	"github.com/andrebq/jotter/auth"
	"github.com/andrebq/jotter/internal/cmdflags"
	"github.com/andrebq/jotter/internal/config"
	"github.com/andrebq/jotter/internal/httpserver"
	"github.com/andrebq/jotter/internal/logutil"
	"github.com/andrebq/jotter/internal/metrics"
	"github.com/andrebq/jotter/store"
	"github.com/andrebq/jotter/web"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var instanceDir string
	var database string
	var bindAddr string
	var secureCookie bool
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the blog web server",
		Flags: []cli.Flag{
			cmdflags.Instance(&instanceDir),
			cmdflags.Database(&database),
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to listen on (defaults to the instance configuration)",
				Destination: &bindAddr,
			},
			&cli.BoolFlag{
				Name:        "secure-cookie",
				Usage:       "Only send the session cookie over HTTPS",
				Destination: &secureCookie,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load(instanceDir, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			if database != "" {
				cfg.Database = database
			}
			if bindAddr != "" {
				cfg.Bind = bindAddr
			}
			if ctx.IsSet("secure-cookie") {
				cfg.SecureCookie = secureCookie
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			err = os.MkdirAll(cfg.InstanceDir, 0755)
			if err != nil {
				return fmt.Errorf("unable to create instance directory %v, cause %w", cfg.InstanceDir, err)
			}
			log := logutil.GetOrDefault(ctx.Context)
			if cfg.SecretKey == config.DefaultSecretKey {
				log.Warn().Msg("Using the development secret key, set JOTTER_SECRET_KEY or secret_key in config.lua")
			}

			db, err := store.Open(ctx.Context, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			listing, err := store.NewListingCache(cfg.ListingCacheTTLDuration())
			if err != nil {
				return err
			}
			defer listing.Close()
			codec, err := auth.NewSessionCodec(cfg.SecretKey, cfg.SessionMaxAgeDuration())
			if err != nil {
				return err
			}
			m := metrics.New()
			app, err := web.New(web.Options{
				DB:           db,
				Codec:        codec,
				Auth:         auth.NewService(auth.DefaultHasher, m),
				Listing:      listing,
				Metrics:      m,
				SecureCookie: cfg.SecureCookie,
			})
			if err != nil {
				return err
			}
			log.Info().Str("database", db.Path()).Str("instance", cfg.InstanceDir).Msg("Configuration loaded")
			return httpserver.Serve(ctx.Context, cfg.Bind, app.Handler())
		},
	}
}
