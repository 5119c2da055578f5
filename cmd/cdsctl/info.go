package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <region>",
		Short: "Validate a region and report basic metadata",
		Long: `The info command restores a region without modifying it and displays
its size, registry usage and allocator geometry.

Example:
  cdsctl info cds.bin
  cdsctl info cds.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type regionInfo struct {
	Path         string   `json:"path"`
	RegionSize   int64    `json:"region_size"`
	PoolSize     uint32   `json:"pool_size"`
	Used         uint32   `json:"used"`
	FreeBytes    uint32   `json:"free_bytes"`
	Entries      int      `json:"entries"`
	MaxEntries   int      `json:"max_entries"`
	MaxBlockSize uint32   `json:"max_block_size"`
	BlockSizes   []uint32 `json:"block_sizes"`
}

func runInfo(args []string) error {
	path := args[0]

	s, err := openSnapshot(path)
	if err != nil {
		return err
	}

	st := s.Stats()
	info := regionInfo{
		Path:         path,
		RegionSize:   st.RegionSize,
		PoolSize:     st.PoolSize,
		Used:         st.Used,
		FreeBytes:    st.FreeBytes,
		Entries:      st.Entries,
		MaxEntries:   st.MaxEntries,
		MaxBlockSize: st.MaxBlockSize,
	}
	for _, b := range st.Buckets {
		info.BlockSizes = append(info.BlockSizes, b.Capacity)
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nRegion Information:\n")
	printInfo("  File:        %s\n", path)
	printInfo("  Size:        %s\n", formatBytes(info.RegionSize))
	printInfo("  Pool:        %d of %d bytes used\n", info.Used, info.PoolSize)
	printInfo("  Free:        %d bytes\n", info.FreeBytes)
	printInfo("  Entries:     %d / %d\n", info.Entries, info.MaxEntries)
	printInfo("  Max block:   %d bytes\n", info.MaxBlockSize)
	printInfo("  Buckets:     %s\n", fmt.Sprint(info.BlockSizes))
	return nil
}
