// dprs computes the DevPilot Readiness Score of a repository.
//
// Usage:
//
//	dprs score [path] [-o DIR] [--verbose] [--json] [--min-score N] [--strict]
//	dprs phases
//	dprs checks
//	dprs config validate [file] | dprs config show
//	dprs history [path] --history-db FILE
//	dprs doctor [path]
//	dprs version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the error to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return rerr.GetExitCode(err)
}
