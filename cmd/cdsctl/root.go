package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flightmem/es/alloc"
	"github.com/joshuapare/flightmem/es/cds"
	"github.com/joshuapare/flightmem/es/region"
	"github.com/joshuapare/flightmem/internal/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logLevel string

	// Region layout flags
	maxEntries int
	blockSizes []uint
)

var rootCmd = &cobra.Command{
	Use:   "cdsctl",
	Short: "Inspect and maintain critical data store region files",
	Long: `cdsctl creates, inspects and edits file-backed critical data store
regions: the persistent area where flight applications keep named blocks
across processor resets. Every block payload is CRC protected and every
allocator descriptor is validated on access.

info, list, get, stats and validate work on a copy of the region and never
modify the file. put and delete restore the region in place, which may
also relink its free lists.`,
	Version:       versionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log library events at this level (debug, info, warn, error)")

	rootCmd.PersistentFlags().
		IntVar(&maxEntries, "max-entries", cds.DefaultMaxEntries, "Registry capacity of the region")
	rootCmd.PersistentFlags().
		UintSliceVar(&blockSizes, "block-sizes", nil, "Allocator bucket sizes (default: built-in table)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// initLogging routes library logs to stderr when asked for.
func initLogging() error {
	if logLevel == "" && !verbose {
		logger.Init(logger.Options{})
		return nil
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
	}
	logger.Init(logger.Options{Enabled: true, Writer: os.Stderr, Level: level, JSON: jsonOut})
	return nil
}

// storeOptions builds cds options from the layout flags.
func storeOptions(reset cds.ResetType) (*cds.Options, error) {
	opts := cds.DefaultOptions()
	opts.Reset = reset
	opts.MaxEntries = maxEntries
	for _, b := range blockSizes {
		if b == 0 || b > 1<<31 {
			return nil, fmt.Errorf("invalid block size %d", b)
		}
		opts.BlockSizes = append(opts.BlockSizes, uint32(b))
	}
	if len(opts.BlockSizes) > alloc.MaxBuckets {
		return nil, fmt.Errorf("at most %d block sizes", alloc.MaxBuckets)
	}
	return opts, nil
}

// openStore maps path for editing and restores its store without ever
// wiping it. The caller must close the returned region.
func openStore(path string, apps cds.AppDirectory) (*cds.Store, *region.File, error) {
	opts, err := storeOptions(cds.ResetProcessor)
	if err != nil {
		return nil, nil, err
	}
	opts.StrictRestore = true
	opts.Apps = apps

	printVerbose("Opening region: %s\n", path)
	f, err := region.Open(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := cds.Open(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, f, nil
}

// openSnapshot restores a store from an in-memory copy of path. Restore
// relinks free lists and may rewrite the registry; none of that reaches
// the file.
func openSnapshot(path string) (*cds.Store, error) {
	opts, err := storeOptions(cds.ResetProcessor)
	if err != nil {
		return nil, err
	}
	opts.StrictRestore = true

	printVerbose("Reading region: %s\n", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}
	s, err := cds.Open(region.MemoryFrom(data), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// parseFullName checks an App.Name argument.
func parseFullName(full string) (string, string, error) {
	app, name, ok := strings.Cut(full, ".")
	if !ok || app == "" || name == "" {
		return "", "", fmt.Errorf("expected App.Name, got %q", full)
	}
	return app, name, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatBytes renders a byte count for humans.
func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
