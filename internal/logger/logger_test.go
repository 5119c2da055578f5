package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	var out bytes.Buffer
	Init(Options{Enabled: false, Writer: &out})
	L.Warn("dropped")
	require.Zero(t, out.Len())
}

func TestInitLevelAndFormat(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var out bytes.Buffer
	Init(Options{Enabled: true, Writer: &out, Level: slog.LevelWarn, JSON: true})
	L.Info("below threshold")
	require.Zero(t, out.Len())

	L.Warn("block invalid", "offset", 0x40)
	require.Contains(t, out.String(), `"msg":"block invalid"`)
	require.Contains(t, out.String(), `"offset":64`)
}

func TestTraceAlloc(t *testing.T) {
	t.Setenv(AllocTraceEnv, "")
	require.False(t, TraceAlloc())
	t.Setenv(AllocTraceEnv, "1")
	require.True(t, TraceAlloc())
}
