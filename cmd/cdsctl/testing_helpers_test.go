package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	// Drain concurrently so large outputs cannot block on a full pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// resetFlags restores every command flag to a small test layout.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logLevel = ""
	maxEntries = 8
	blockSizes = []uint{16, 32, 64, 256, 512}

	initSize = 4096
	initForce = false
	putCritical = false
	getOut = ""
	getHex = false
	deleteTableOwner = false
	deleteActive = nil
}

// newRegion initializes a region file in a temp dir and returns its path.
func newRegion(t *testing.T) string {
	t.Helper()
	resetFlags()
	path := filepath.Join(t.TempDir(), "cds.bin")
	_, err := captureOutput(t, func() error { return runInit([]string{path}) })
	require.NoError(t, err)
	return path
}

// writePayload writes data to a temp file and returns its path.
func writePayload(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// put stores data under full and fails the test on error.
func put(t *testing.T, region, full string, data []byte) {
	t.Helper()
	_, err := captureOutput(t, func() error {
		return runPut([]string{region, full, writePayload(t, data)})
	})
	require.NoError(t, err)
}

// listJSON returns the parsed output of list --json.
func listJSON(t *testing.T, region string) []listEntry {
	t.Helper()
	jsonOut = true
	defer func() { jsonOut = false }()
	out, err := captureOutput(t, func() error { return runList([]string{region}) })
	require.NoError(t, err)
	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	return entries
}
