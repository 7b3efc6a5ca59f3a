package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"loxvm/vm"
)

// maxLineBytes caps one REPL line, per §6's "read a line (≤1024 bytes)".
const maxLineBytes = 1024

type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive read-eval-print loop: read a line, compile and run
  it, repeat until EOF. Only print statements write output; the value of
  an expression statement is not echoed. One VM instance is shared
  across every line, so top-level variables and functions persist for
  the rest of the session. Each line is its own compile unit -- a
  statement split across multiple lines will not parse, the same
  limitation the reference implementation's REPL has.
`
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{Prompt: "> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start REPL: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New(os.Stdout, os.Stderr)
	defer machine.Free()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		machine.Interpret(line)
	}
}
