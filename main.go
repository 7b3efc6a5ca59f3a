package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

// Exit codes mirror the original C source's main(): 0 success, 64 usage
// error, 65 a compile-time error, 70 a runtime error (§6).
const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(mapExitStatus(subcommands.Execute(ctx)))
}

// mapExitStatus translates the subcommands package's own exit statuses --
// ExitUsageError and ExitHelp, raised for a missing/unknown subcommand or
// bad flags -- onto the spec's usage-error exit code (§6 "Other argument
// counts print usage to stderr and exit with 64"). Every other status
// (ExitSuccess, ExitFailure, and the command-specific 64/65/70 values
// returned by runCmd/replCmd/disasmCmd) passes through unchanged.
func mapExitStatus(status subcommands.ExitStatus) int {
	switch status {
	case subcommands.ExitUsageError, subcommands.ExitHelp:
		return exitUsage
	default:
		return int(status)
	}
}
