package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flightmem/es/cds"
	"github.com/joshuapare/flightmem/es/region"
)

var (
	initSize  int64
	initForce bool
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <region>",
		Short: "Create an empty region file",
		Long: `The init command creates a region file of the given size, writes the
boundary signatures and an empty registry.

Example:
  cdsctl init cds.bin --size 65536
  cdsctl init cds.bin --size 1M --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args)
		},
	}
	cmd.Flags().Int64Var(&initSize, "size", 64*1024, "Region size in bytes")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	return cmd
}

func runInit(args []string) error {
	path := args[0]

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	opts, err := storeOptions(cds.ResetPowerOn)
	if err != nil {
		return err
	}

	printVerbose("Creating region: %s (%d bytes)\n", path, initSize)
	f, err := region.Create(path, initSize)
	if err != nil {
		return fmt.Errorf("failed to create region: %w", err)
	}
	s, err := cds.Open(f, opts)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	st := s.Stats()
	if err := f.Close(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"path":           path,
			"region_size":    st.RegionSize,
			"pool_size":      st.PoolSize,
			"max_entries":    st.MaxEntries,
			"max_block_size": st.MaxBlockSize,
		})
	}
	printInfo("Initialized %s\n", path)
	printInfo("  Region size: %s\n", formatBytes(st.RegionSize))
	printInfo("  Registry:    %d entries\n", st.MaxEntries)
	printInfo("  Max block:   %d bytes\n", st.MaxBlockSize)
	return nil
}
