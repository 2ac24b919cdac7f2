package scgiexec

import "strings"

// Invocation is the resolved script and its argument vector,
// consumed exactly once by the launcher.
type Invocation struct {
	Path string
	Argv []string
}

// ResolveScript determines the script to execute and checks it against the
// path safety policy.
//
// By default the script is SCRIPT_FILENAME from the built environment, run
// with itself as argv[0]. args are the adapter's own invocation arguments:
// if args[0] ends in "/" it is a confinement directory the script must
// reside under; otherwise args[0] is a fixed override script and args
// becomes its argument vector, superseding whatever the request claims.
// confineDir is the configured default confinement, applied when args
// supplies none.
//
// The path must not contain a literal "../" and, when confined, must start
// with the confinement directory string. This is deliberately a substring
// and prefix check, not canonicalization.
func ResolveScript(env []string, args []string, confineDir string) (Invocation, error) {
	script, _ := LookupEnv(env, "SCRIPT_FILENAME")
	argv := []string{script}
	checkDir := confineDir

	if len(args) > 0 {
		if strings.HasSuffix(args[0], "/") {
			checkDir = args[0]
		} else {
			// Specific script and maybe args in the supervisor config.
			script = args[0]
			argv = args
		}
	}

	if script == "" {
		return Invocation{}, Errorf(StatusInternalError, "CGI environment missing SCRIPT_FILENAME")
	}

	if strings.Contains(script, "../") {
		return Invocation{}, Errorf(StatusInternalError, `SCRIPT_FILENAME should not include "../"`)
	}

	if checkDir != "" && !strings.HasPrefix(script, checkDir) {
		return Invocation{}, Errorf(StatusInternalError, "[%s] doesn't reside under [%s]", script, checkDir)
	}

	return Invocation{Path: script, Argv: argv}, nil
}
