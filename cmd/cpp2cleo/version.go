package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=...".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func toolName() string { return "cpp2cleo " + version }

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("cpp2cleo version %s\n", version)
			cmd.Printf("Git commit: %s\n", gitCommit)
			cmd.Printf("Build date: %s\n", buildDate)
			cmd.Printf("Go version: %s\n", runtime.Version())
		},
	}
}
