package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"loxvm/compiler"
	"loxvm/debug"
	"loxvm/table"
	"loxvm/value"
)

type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "compile a script and print its bytecode" }
func (*disasmCmd) Usage() string {
	return `disasm <path>:
  Compile the script at path and print the disassembled bytecode for it
  and every function it defines, without running it.
`
}
func (*disasmCmd) SetFlags(*flag.FlagSet) {}

func (*disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	function, errs := compiler.Compile(string(source), value.NewHeap(), table.New())
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return subcommands.ExitStatus(exitCompile)
	}

	debug.DisassembleChunk(os.Stdout, function.Chunk, "<script>")
	return subcommands.ExitSuccess
}
