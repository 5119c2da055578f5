package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <region>",
		Short: "List registered blocks",
		Long: `The list command prints every registered block with its size, pool
offset and handle.

Example:
  cdsctl list cds.bin
  cdsctl list cds.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args)
		},
	}
	return cmd
}

type listEntry struct {
	Name          string `json:"name"`
	Size          int    `json:"size"`
	Offset        uint32 `json:"offset"`
	Handle        string `json:"handle"`
	CriticalTable bool   `json:"critical_table"`
}

func runList(args []string) error {
	s, err := openSnapshot(args[0])
	if err != nil {
		return err
	}

	entries := s.List()
	out := make([]listEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, listEntry{
			Name:          e.Name,
			Size:          e.Size,
			Offset:        e.Offset,
			Handle:        e.Handle.String(),
			CriticalTable: e.CriticalTable,
		})
	}

	if jsonOut {
		return printJSON(out)
	}
	if len(out) == 0 {
		printInfo("No blocks registered\n")
		return nil
	}
	if quiet {
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tOFFSET\tHANDLE\tCRITICAL")
	for _, e := range out {
		crit := ""
		if e.CriticalTable {
			crit = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t0x%08X\t%s\t%s\n", e.Name, e.Size, e.Offset, e.Handle, crit)
	}
	return tw.Flush()
}
