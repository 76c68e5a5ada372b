// Package config assembles the server configuration.
//
// Values are layered: built-in defaults, then the optional instance file
// (config.lua inside the instance directory), then environment variables.
// Command line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andrebq/jotter/auth"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

const (
	InstanceFile     = "config.lua"
	DatabaseEnvVar   = "JOTTER_DATABASE"
	DefaultSecretKey = "dev"
	DefaultBind      = "localhost:5000"
)

type (
	Config struct {
		InstanceDir string
		Database    string
		SecretKey   string
		Bind        string

		SecureCookie bool
		// seconds
		SessionMaxAge   int
		ListingCacheTTL int
	}
)

var (
	// globals read back from config.lua, anything else is ignored
	instanceKeys = []string{
		"database", "secret_key", "bind", "secure_cookie", "session_max_age", "listing_cache_ttl",
	}
)

func Defaults(instanceDir string) Config {
	return Config{
		InstanceDir:     instanceDir,
		Database:        filepath.Join(instanceDir, "jotter.sqlite"),
		SecretKey:       DefaultSecretKey,
		Bind:            DefaultBind,
		SessionMaxAge:   int(auth.DefaultSessionMaxAge / time.Second),
		ListingCacheTTL: 60,
	}
}

// Load builds the configuration for instanceDir. A missing instance file
// is not an error.
func Load(instanceDir string, getenv func(string) string, setenv func(string, string) error) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults(instanceDir)
	err := LoadInstanceFile(&cfg, filepath.Join(instanceDir, InstanceFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if db := getenv(DatabaseEnvVar); db != "" {
		cfg.Database = db
	}
	if secret, ok := auth.SecretFromEnv(auth.SecretKeyEnvVar, getenv, setenv); ok {
		cfg.SecretKey = secret
	}
	return cfg, nil
}

// LoadInstanceFile runs the Lua file at path and copies the known globals
// it sets into cfg. The script only gets the base, string and table libs.
func LoadInstanceFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // Must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			return fmt.Errorf("unable to prepare lua state for %v, cause %w", path, err)
		}
	}
	err := L.DoFile(path)
	if err != nil {
		return fmt.Errorf("unable to run instance file %v, cause %w", path, err)
	}
	values := L.NewTable()
	for _, k := range instanceKeys {
		if v := L.GetGlobal(k); v != lua.LNil {
			values.RawSetString(k, v)
		}
	}
	err = gluamapper.Map(values, cfg)
	if err != nil {
		return fmt.Errorf("unable to read settings from %v, cause %w", path, err)
	}
	return nil
}

func (c Config) SessionMaxAgeDuration() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

func (c Config) ListingCacheTTLDuration() time.Duration {
	return time.Duration(c.ListingCacheTTL) * time.Second
}

// Validate complains about settings the server cannot start with.
func (c Config) Validate() error {
	switch {
	case c.SecretKey == "":
		return errors.New("config: secret key cannot be empty")
	case c.Database == "":
		return errors.New("config: database path cannot be empty")
	case c.SessionMaxAge <= 0:
		return fmt.Errorf("config: session max age must be positive, got %v", c.SessionMaxAge)
	case c.ListingCacheTTL <= 0:
		return fmt.Errorf("config: listing cache ttl must be positive, got %v", c.ListingCacheTTL)
	}
	return nil
}
