package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flightmem/es/cds"
)

var (
	deleteTableOwner bool
	deleteActive     []string
)

func init() {
	rootCmd.AddCommand(newDeleteCmd())
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <region> <App.Name>",
		Short: "Remove a registered block",
		Long: `The delete command frees App.Name and removes its registry row.

Blocks owned by a critical table are only removed with --table-owner.
Applications listed with --active are treated as running, and their
blocks are refused.

Example:
  cdsctl delete cds.bin NAV.State
  cdsctl delete cds.bin TBL.Limits --table-owner
  cdsctl delete cds.bin NAV.State --active NAV,GNC`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args)
		},
	}
	cmd.Flags().BoolVar(&deleteTableOwner, "table-owner", false, "Delete on behalf of the owning critical table")
	cmd.Flags().StringSliceVar(&deleteActive, "active", nil, "Applications to treat as running")
	return cmd
}

func runDelete(args []string) error {
	path, full := args[0], args[1]

	if _, _, err := parseFullName(full); err != nil {
		return err
	}
	active := slices.Clone(deleteActive)
	apps := cds.AppFunc(func(app string) bool { return slices.Contains(active, app) })

	s, f, err := openStore(path, apps)
	if err != nil {
		return err
	}
	defer f.Close()

	delErr := s.Delete(full, deleteTableOwner)
	if err := s.Flush(); err != nil {
		return fmt.Errorf("failed to flush region: %w", err)
	}
	if delErr != nil {
		return delErr
	}
	printInfo("Deleted %s\n", full)
	return nil
}
