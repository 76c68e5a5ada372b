package auth

import (
	"os"
)

const (
	SecretKeyEnvVar = "JOTTER_SECRET_KEY"
)

// SecretFromEnv reads the session secret from varname and blanks the
// variable so child processes never see it. An empty value reports false.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (string, bool) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if val == "" {
		return "", false
	}
	setfn(varname, "")
	return val, true
}
