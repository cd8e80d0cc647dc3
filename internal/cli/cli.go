package cli

import (
	"fmt"
	"io"
	"os"
)

// version is stamped at build time via -ldflags "-X racket/internal/cli.version=...".
var version = "dev"

// lookupEnv is swapped by tests.
var lookupEnv = os.LookupEnv

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

// Main returns an exit code for use by cmd/racket.
func Main() int { return MainWithArgs(os.Args[1:]) }

func run(args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err.Error())
		return 1
	}
	return 0
}
