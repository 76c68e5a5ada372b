package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andrebq/jotter/auth"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) (func(string) string, func(string, string) error) {
	return func(k string) string { return vars[k] },
		func(k, v string) error { vars[k] = v; return nil }
}

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	get, set := fakeEnv(map[string]string{})
	cfg, err := Load(dir, get, set)
	require.NoError(t, err)
	require.Equal(t, Defaults(dir), cfg)
	require.Equal(t, "dev", cfg.SecretKey)
	require.Equal(t, filepath.Join(dir, "jotter.sqlite"), cfg.Database)
	require.NoError(t, cfg.Validate())
}

func TestInstanceFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, InstanceFile), []byte(`
secret_key = string.rep("x", 4) .. "-prod"
bind = "0.0.0.0:8080"
secure_cookie = true
session_max_age = 3600
listing_cache_ttl = 5
unrelated = "ignored"
`), 0644)
	require.NoError(t, err)

	get, set := fakeEnv(map[string]string{})
	cfg, err := Load(dir, get, set)
	require.NoError(t, err)
	require.Equal(t, "xxxx-prod", cfg.SecretKey)
	require.Equal(t, "0.0.0.0:8080", cfg.Bind)
	require.True(t, cfg.SecureCookie)
	require.Equal(t, 3600, cfg.SessionMaxAge)
	require.Equal(t, 5, cfg.ListingCacheTTL)
	require.Equal(t, filepath.Join(dir, "jotter.sqlite"), cfg.Database, "values not in the file keep their defaults")
}

func TestEnvironmentOverridesInstanceFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, InstanceFile), []byte(`secret_key = "from-file"`), 0644)
	require.NoError(t, err)

	env := map[string]string{
		auth.SecretKeyEnvVar: "from-env",
		DatabaseEnvVar:       "/tmp/other.sqlite",
	}
	get, set := fakeEnv(env)
	cfg, err := Load(dir, get, set)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.SecretKey)
	require.Equal(t, "/tmp/other.sqlite", cfg.Database)
	require.Empty(t, env[auth.SecretKeyEnvVar], "secret should be removed from the environment")
}

func TestBrokenInstanceFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, InstanceFile), []byte(`secret_key = `), 0644)
	require.NoError(t, err)
	get, set := fakeEnv(map[string]string{})
	_, err = Load(dir, get, set)
	require.Error(t, err)
}

func TestSandboxedInstanceFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, InstanceFile), []byte(`secret_key = os.getenv("HOME")`), 0644)
	require.NoError(t, err)
	get, set := fakeEnv(map[string]string{})
	_, err = Load(dir, get, set)
	require.Error(t, err, "the os library is not available to instance files")
}

func TestValidate(t *testing.T) {
	cfg := Defaults(t.TempDir())
	cfg.SecretKey = ""
	require.Error(t, cfg.Validate())

	cfg = Defaults(t.TempDir())
	cfg.SessionMaxAge = 0
	require.Error(t, cfg.Validate())
}
