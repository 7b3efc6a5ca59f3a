package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"loxvm/vm"
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute a script file" }
func (*runCmd) Usage() string {
	return `run <path>:
  Compile and run the script at path.
`
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 no script file given")
		return subcommands.ExitStatus(exitUsage)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", args[0], err)
		return subcommands.ExitStatus(exitUsage)
	}

	machine := vm.New(os.Stdout, os.Stderr)
	defer machine.Free()

	switch machine.Interpret(string(source)) {
	case vm.InterpretCompileError:
		return subcommands.ExitStatus(exitCompile)
	case vm.InterpretRuntimeError:
		return subcommands.ExitStatus(exitRuntime)
	default:
		return subcommands.ExitSuccess
	}
}
