package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	getOut string
	getHex bool
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <region> <App.Name>",
		Short: "Read a block's payload",
		Long: `The get command reads App.Name after verifying its CRC. The payload is
written raw to stdout, to a file with --out, or as a hex dump with --hex.

Example:
  cdsctl get cds.bin NAV.State --hex
  cdsctl get cds.bin NAV.State --out state.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	cmd.Flags().StringVarP(&getOut, "out", "o", "", "Write the payload to this file")
	cmd.Flags().BoolVar(&getHex, "hex", false, "Print a hex dump")
	return cmd
}

func runGet(args []string) error {
	path, full := args[0], args[1]

	if _, _, err := parseFullName(full); err != nil {
		return err
	}

	s, err := openSnapshot(path)
	if err != nil {
		return err
	}

	h, err := s.Lookup(full)
	if err != nil {
		return err
	}
	size, err := s.Size(h)
	if err != nil {
		return err
	}
	payload := make([]byte, size)
	if _, err := s.Read(h, payload); err != nil {
		return err
	}

	switch {
	case getOut != "":
		if err := os.WriteFile(getOut, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", getOut, err)
		}
		printVerbose("Wrote %d bytes to %s\n", len(payload), getOut)
	case jsonOut:
		return printJSON(map[string]any{
			"name": full,
			"size": size,
			"data": hex.EncodeToString(payload),
		})
	case getHex:
		printInfo("%s", hex.Dump(payload))
	default:
		if _, err := os.Stdout.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
