package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/flightmem/es/cds"
	"github.com/joshuapare/flightmem/internal/format"
)

func TestInitCommand(t *testing.T) {
	path := newRegion(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, 4096, info.Size())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("_CDSBeg_"), data[:8])
	require.Equal(t, []byte("_CDSEnd_"), data[len(data)-8:])

	t.Run("refuses existing file", func(t *testing.T) {
		_, err := captureOutput(t, func() error { return runInit([]string{path}) })
		require.ErrorContains(t, err, "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		put(t, path, "NAV.State", []byte("abc"))
		initForce = true
		defer func() { initForce = false }()
		_, err := captureOutput(t, func() error { return runInit([]string{path}) })
		require.NoError(t, err)
		require.Empty(t, listJSON(t, path))
	})

	t.Run("too small", func(t *testing.T) {
		initSize = 64
		defer func() { initSize = 4096 }()
		small := filepath.Join(t.TempDir(), "small.bin")
		_, err := captureOutput(t, func() error { return runInit([]string{small}) })
		require.Error(t, err)
		require.NoFileExists(t, small)
	})
}

func TestPutGetRoundTrip(t *testing.T) {
	path := newRegion(t)
	payload := []byte("attitude quaternion")
	put(t, path, "GNC.Attitude", payload)

	t.Run("raw to file", func(t *testing.T) {
		getOut = filepath.Join(t.TempDir(), "out.bin")
		defer func() { getOut = "" }()
		_, err := captureOutput(t, func() error { return runGet([]string{path, "GNC.Attitude"}) })
		require.NoError(t, err)
		got, err := os.ReadFile(getOut)
		require.NoError(t, err)
		require.Equal(t, payload, got)
	})

	t.Run("raw to stdout", func(t *testing.T) {
		out, err := captureOutput(t, func() error { return runGet([]string{path, "GNC.Attitude"}) })
		require.NoError(t, err)
		require.Equal(t, string(payload), out)
	})

	t.Run("hex dump", func(t *testing.T) {
		getHex = true
		defer func() { getHex = false }()
		out, err := captureOutput(t, func() error { return runGet([]string{path, "GNC.Attitude"}) })
		require.NoError(t, err)
		require.Contains(t, out, "61 74 74 69")
		require.Contains(t, out, "|attitude quatern|")
	})

	t.Run("json", func(t *testing.T) {
		jsonOut = true
		defer func() { jsonOut = false }()
		out, err := captureOutput(t, func() error { return runGet([]string{path, "GNC.Attitude"}) })
		require.NoError(t, err)
		var v struct {
			Name string `json:"name"`
			Size int    `json:"size"`
			Data string `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &v))
		require.Equal(t, "GNC.Attitude", v.Name)
		require.Equal(t, len(payload), v.Size)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := captureOutput(t, func() error { return runGet([]string{path, "GNC.Missing"}) })
		require.ErrorIs(t, err, cds.ErrNotFound)
	})

	t.Run("bad name", func(t *testing.T) {
		_, err := captureOutput(t, func() error { return runGet([]string{path, "NoDot"}) })
		require.ErrorContains(t, err, "expected App.Name")
	})
}

func TestPutReplacesAndOverwrites(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.State", []byte("1234"))
	first := listJSON(t, path)
	require.Len(t, first, 1)

	// Same size rewrites in place.
	put(t, path, "NAV.State", []byte("5678"))
	same := listJSON(t, path)
	require.Equal(t, first, same)

	// A new size moves the block but keeps the handle.
	put(t, path, "NAV.State", bytes.Repeat([]byte{0x7E}, 100))
	moved := listJSON(t, path)
	require.Len(t, moved, 1)
	require.Equal(t, 100, moved[0].Size)
	require.Equal(t, first[0].Handle, moved[0].Handle)
	require.NotEqual(t, first[0].Offset, moved[0].Offset)

	t.Run("empty payload", func(t *testing.T) {
		_, err := captureOutput(t, func() error {
			return runPut([]string{path, "NAV.Empty", writePayload(t, nil)})
		})
		require.ErrorIs(t, err, cds.ErrInvalidSize)
	})
}

func TestListCommand(t *testing.T) {
	path := newRegion(t)

	out, err := captureOutput(t, func() error { return runList([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "No blocks registered")

	put(t, path, "NAV.State", []byte("x"))
	putCritical = true
	put(t, path, "TBL.Limits", []byte("limits"))
	putCritical = false

	out, err = captureOutput(t, func() error { return runList([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "NAV.State")
	require.Contains(t, out, "TBL.Limits")

	entries := listJSON(t, path)
	require.Len(t, entries, 2)
	require.Equal(t, "NAV.State", entries[0].Name)
	require.False(t, entries[0].CriticalTable)
	require.Equal(t, "TBL.Limits", entries[1].Name)
	require.True(t, entries[1].CriticalTable)
	require.Equal(t, 6, entries[1].Size)
}

func TestDeleteCommand(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.State", []byte("x"))
	putCritical = true
	put(t, path, "TBL.Limits", []byte("limits"))
	putCritical = false

	tests := []struct {
		name       string
		target     string
		tableOwner bool
		active     []string
		wantErr    error
	}{
		{name: "owner active", target: "NAV.State", active: []string{"GNC", "NAV"}, wantErr: cds.ErrOwnerActive},
		{name: "critical table", target: "TBL.Limits", wantErr: cds.ErrCriticalTable},
		{name: "not found", target: "NAV.Other", wantErr: cds.ErrNotFound},
		{name: "plain delete", target: "NAV.State"},
		{name: "table owner delete", target: "TBL.Limits", tableOwner: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleteTableOwner = tt.tableOwner
			deleteActive = tt.active
			defer func() {
				deleteTableOwner = false
				deleteActive = nil
			}()
			_, err := captureOutput(t, func() error { return runDelete([]string{path, tt.target}) })
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
	require.Empty(t, listJSON(t, path))
}

func TestValidateCommand(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.State", []byte("navigation"))
	put(t, path, "GNC.Mode", []byte{1, 2, 3, 4})

	out, err := captureOutput(t, func() error { return runValidate([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "Checked 2 entries")
	require.Contains(t, out, "No corruption detected")

	// Flip one payload byte behind the store's back.
	var off uint32
	for _, e := range listJSON(t, path) {
		if e.Name == "NAV.State" {
			off = e.Offset
		}
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[int(off)+format.BlockHeaderSize] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	jsonOut = true
	out, err = captureOutput(t, func() error { return runValidate([]string{path}) })
	jsonOut = false
	require.ErrorIs(t, err, errValidation)
	var res validateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.False(t, res.Valid)
	require.Equal(t, 2, res.Entries)
	require.Len(t, res.Problems, 1)
	require.Contains(t, res.Problems[0], "payload corrupted")

	_, err = captureOutput(t, func() error { return runGet([]string{path, "NAV.State"}) })
	require.ErrorIs(t, err, cds.ErrPayloadCorrupted)
}

func TestReadOnlyCommandsKeepInvalidRegion(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.State", []byte("x"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	copy(data[:8], "garbage!")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	for name, run := range map[string]func([]string) error{
		"info":     runInfo,
		"list":     runList,
		"stats":    runStats,
		"validate": runValidate,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := captureOutput(t, func() error { return run([]string{path}) })
			require.ErrorIs(t, err, cds.ErrRegionInvalid)
		})
	}

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, after)
}

func TestWipeCommand(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.State", []byte("x"))

	_, err := captureOutput(t, func() error { return runWipe([]string{path}) })
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("_CDSBeg_"), data[:8])
	require.Equal(t, make([]byte, len(data)-16), data[8:len(data)-8])
	require.Equal(t, []byte("_CDSEnd_"), data[len(data)-8:])

	// A wiped region has no registry, so strict commands refuse it.
	_, err = captureOutput(t, func() error { return runList([]string{path}) })
	require.ErrorIs(t, err, cds.ErrRegionInvalid)
}

func TestInfoAndStatsCommands(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.State", []byte("abcdef"))
	put(t, path, "GNC.Mode", []byte("m"))

	out, err := captureOutput(t, func() error { return runInfo([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "Region Information")
	require.Contains(t, out, "Entries:     2 / 8")
	require.Contains(t, out, "4.0 KB")

	jsonOut = true
	out, err = captureOutput(t, func() error { return runInfo([]string{path}) })
	require.NoError(t, err)
	var info regionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, []uint32{16, 32, 64, 256, 512}, info.BlockSizes)
	require.EqualValues(t, 4096, info.RegionSize)

	out, err = captureOutput(t, func() error { return runStats([]string{path}) })
	require.NoError(t, err)
	var st cds.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Equal(t, 2, st.Entries)
	require.EqualValues(t, 3, st.BlocksCreated) // registry plus two entries
	jsonOut = false

	out, err = captureOutput(t, func() error { return runStats([]string{path}) })
	require.NoError(t, err)
	require.Contains(t, out, "Buckets:")
	require.Contains(t, out, "Payload errors:    0")
}

func TestStoreOptionsRejectsBadBlockSizes(t *testing.T) {
	resetFlags()
	blockSizes = []uint{0}
	_, err := storeOptions(cds.ResetProcessor)
	require.Error(t, err)

	resetFlags()
	blockSizes = make([]uint, 18)
	for i := range blockSizes {
		blockSizes[i] = 1 << i
	}
	_, err = storeOptions(cds.ResetProcessor)
	require.Error(t, err)
}

func TestParseFullName(t *testing.T) {
	app, name, err := parseFullName("NAV.State")
	require.NoError(t, err)
	require.Equal(t, "NAV", app)
	require.Equal(t, "State", name)

	for _, bad := range []string{"", "NAV", ".State", "NAV."} {
		_, _, err := parseFullName(bad)
		require.Error(t, err, bad)
	}
}

func TestInspectionLeavesFileUntouched(t *testing.T) {
	path := newRegion(t)
	put(t, path, "NAV.A", []byte("a"))
	put(t, path, "NAV.B", []byte("b"))
	put(t, path, "NAV.C", []byte("c"))

	// Free B before A so the free list runs against block order and a
	// restore would relink it.
	for _, name := range []string{"NAV.B", "NAV.A"} {
		_, err := captureOutput(t, func() error { return runDelete([]string{path, name}) })
		require.NoError(t, err)
	}

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	for name, run := range map[string]func() error{
		"info":     func() error { return runInfo([]string{path}) },
		"list":     func() error { return runList([]string{path}) },
		"stats":    func() error { return runStats([]string{path}) },
		"validate": func() error { return runValidate([]string{path}) },
		"get":      func() error { return runGet([]string{path, "NAV.C"}) },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := captureOutput(t, run)
			require.NoError(t, err)
			after, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, before, after)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	resetFlags()
	out, err := captureOutput(t, runVersion)
	require.NoError(t, err)
	require.Contains(t, out, "cdsctl dev (commit none")
	require.Equal(t, versionString(), rootCmd.Version)

	jsonOut = true
	defer func() { jsonOut = false }()
	out, err = captureOutput(t, runVersion)
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Equal(t, "dev", v["version"])
	require.NotEmpty(t, v["go"])
}
