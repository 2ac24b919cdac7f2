package scgiexec

import (
	"strings"

	"github.com/bep/helpers/envhelpers"
)

// BuildEnviron merges the decoded header fields over the base environment
// and applies the CGI compatibility rules: the SCGI marker variable is
// dropped and GATEWAY_INTERFACE is forced to CGI/1.1.
//
// Fields are installed in decode order, so a later duplicate name wins.
// The base slice is not modified; the result is what gets handed to exec
// as the script's environment table.
func BuildEnviron(base []string, fields Fields) []string {
	env := append([]string(nil), base...)
	for _, f := range fields {
		envhelpers.SetEnvVars(&env, f.Name, f.Value)
	}
	env = deleteEnvVar(env, "SCGI")
	envhelpers.SetEnvVars(&env, "GATEWAY_INTERFACE", "CGI/1.1")
	return env
}

// LookupEnv returns the value of key in the key=value slice env.
func LookupEnv(env []string, key string) (string, bool) {
	for _, kv := range env {
		k, v := envhelpers.SplitEnvVar(kv)
		if k == key {
			return v, true
		}
	}
	return "", false
}

func deleteEnvVar(env []string, key string) []string {
	out := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, key+"=") {
			out = append(out, kv)
		}
	}
	return out
}
