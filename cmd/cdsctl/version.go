package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at link time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// versionString is what --version and the version command report.
func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", version, commit, date, runtime.Version())
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

func runVersion() error {
	if jsonOut {
		return printJSON(map[string]string{
			"version": version,
			"commit":  commit,
			"date":    date,
			"go":      runtime.Version(),
		})
	}
	printInfo("cdsctl %s\n", versionString())
	return nil
}
