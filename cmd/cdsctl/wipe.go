package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flightmem/es/cds"
	"github.com/joshuapare/flightmem/es/region"
)

func init() {
	rootCmd.AddCommand(newWipeCmd())
}

func newWipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe <region>",
		Short: "Zero a region and rewrite its signatures",
		Long: `The wipe command zero-fills everything between the boundary signatures,
the same way a power-on reset does. The next open starts from an empty
registry.

Example:
  cdsctl wipe cds.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWipe(args)
		},
	}
	return cmd
}

func runWipe(args []string) error {
	path := args[0]

	printVerbose("Opening region: %s\n", path)
	f, err := region.Open(path)
	if err != nil {
		return err
	}
	if err := cds.Wipe(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to wipe region: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printInfo("Wiped %s (%s)\n", path, formatBytes(f.Size()))
	return nil
}
