// Command scgi-exec executes a CGI script over one SCGI connection.
//
// It is spawned per connection by an SCGI front end with the connection on
// its standard input and output. It reads one SCGI header block, rebuilds
// a CGI environment and replaces itself with the target script.
//
// An optional first argument ending in "/" confines scripts to that
// directory; any other first argument is a fixed script to run (with the
// remaining arguments as its argument vector) regardless of what the
// request claims.
package main

import (
	"os"

	"github.com/bep/scgiexec"
)

func main() {
	cfg, err := scgiexec.LoadConfig()
	if err != nil {
		fail(scgiexec.Errorf(scgiexec.StatusInternalError, "%s", err))
	}

	logger := scgiexec.NewDebugLogger(cfg.DebugLog)
	logger.Debug("starting", "args", os.Args)

	r := &scgiexec.Runner{
		Stdin:   os.Stdin,
		Args:    os.Args[1:],
		Environ: os.Environ(),
		Config:  cfg,
		Logger:  logger,
	}

	// Run only returns on failure; on success the process image has been
	// replaced by the script.
	fail(r.Run())
}

func fail(err *scgiexec.Error) {
	err.WriteResponse(os.Stdout)
	os.Exit(1)
}
