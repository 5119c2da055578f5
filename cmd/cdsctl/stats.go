package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/flightmem/es/cds"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <region>",
		Short: "Show allocator statistics per bucket",
		Long: `The stats command prints the allocator counters of a region: blocks
carved from the tail, released and recycled per bucket size.

Example:
  cdsctl stats cds.bin
  cdsctl stats cds.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	s, err := openSnapshot(args[0])
	if err != nil {
		return err
	}

	st := s.Stats()
	if jsonOut {
		return printJSON(st)
	}
	printStats(st)
	return nil
}

func printStats(st cds.Stats) {
	printInfo("\nAllocator:\n")
	printInfo("  Pool size:         %d bytes\n", st.PoolSize)
	printInfo("  Used:              %d bytes\n", st.Used)
	printInfo("  Free:              %d bytes\n", st.FreeBytes)
	printInfo("  Blocks created:    %d\n", st.BlocksCreated)
	printInfo("  Validation errors: %d\n", st.ValidationErrors)

	printInfo("\nBuckets:\n")
	printInfo("  %10s %8s %8s %8s %7s %6s\n", "CAPACITY", "CREATED", "RELEASED", "RECYCLED", "LEAKED", "FREE")
	for _, b := range st.Buckets {
		if b.Created == 0 {
			continue
		}
		printInfo("  %10d %8d %8d %8d %7d %6d\n",
			b.Capacity, b.Created, b.Released, b.Recycled, b.Leaked, b.Free())
	}

	printInfo("\nRegistry:\n")
	printInfo("  Entries:           %d / %d\n", st.Entries, st.MaxEntries)
	printInfo("  Payload errors:    %d\n", st.PayloadErrors)
}
