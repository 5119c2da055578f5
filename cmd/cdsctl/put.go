package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flightmem/es/cds"
)

var putCritical bool

func init() {
	rootCmd.AddCommand(newPutCmd())
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <region> <App.Name> <payload-file>",
		Short: "Register a block and store a file's contents in it",
		Long: `The put command registers App.Name with the size of the payload file and
writes the file into the block. An existing block of a different size is
replaced.

Example:
  cdsctl put cds.bin NAV.State state.bin
  cdsctl put cds.bin TBL.Limits limits.bin --critical`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(args)
		},
	}
	cmd.Flags().BoolVar(&putCritical, "critical", false, "Mark the block as owned by a critical table")
	return cmd
}

func runPut(args []string) error {
	path, full, payloadPath := args[0], args[1], args[2]

	app, name, err := parseFullName(full)
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	s, f, err := openStore(path, nil)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := s.Register(app, name, len(payload), putCritical)
	if err != nil && !errors.Is(err, cds.ErrDuplicateName) {
		return fmt.Errorf("failed to register %s: %w", full, err)
	}
	if err := s.Write(h, payload); err != nil {
		return fmt.Errorf("failed to write %s: %w", full, err)
	}
	if err := s.Flush(); err != nil {
		return fmt.Errorf("failed to flush region: %w", err)
	}

	printInfo("Stored %d bytes in %s\n", len(payload), full)
	printVerbose("  Handle: %s\n", h)
	return nil
}
