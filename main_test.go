package main

import (
	"testing"

	"github.com/google/subcommands"
)

func TestMapExitStatus(t *testing.T) {
	tests := []struct {
		status subcommands.ExitStatus
		want   int
	}{
		{subcommands.ExitSuccess, int(subcommands.ExitSuccess)},
		{subcommands.ExitFailure, int(subcommands.ExitFailure)},
		{subcommands.ExitUsageError, exitUsage},
		{subcommands.ExitHelp, exitUsage},
		{subcommands.ExitStatus(exitCompile), exitCompile},
		{subcommands.ExitStatus(exitRuntime), exitRuntime},
	}
	for _, tt := range tests {
		if got := mapExitStatus(tt.status); got != tt.want {
			t.Errorf("mapExitStatus(%v) = %d, want %d", tt.status, got, tt.want)
		}
	}
}
