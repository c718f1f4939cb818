package logger

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		ok   bool
	}{
		{in: "debug", want: zapcore.DebugLevel, ok: true},
		{in: " INFO ", want: zapcore.InfoLevel, ok: true},
		{in: "", want: zapcore.InfoLevel, ok: true},
		{in: "warning", want: zapcore.WarnLevel, ok: true},
		{in: "error", want: zapcore.ErrorLevel, ok: true},
		{in: "verbose", want: zapcore.InfoLevel, ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		require.Equal(t, tt.want, got, tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestGlobalHelpersWriteToInstalledLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Debug("hidden")
	Info("profiles loaded", "count", 1)
	Warn("checksum mismatch")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "profiles loaded", entries[0].Message)
	require.Contains(t, entries[0].ContextMap(), "count")
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewZapAdapter(zap.New(core))

	a.Debug("d")
	a.Info("i")
	a.Warn("w")
	a.Error("e", "profile", "development")

	entries := logs.All()
	require.Len(t, entries, 4)
	require.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	require.Equal(t, "development", entries[3].ContextMap()["profile"])
}

func TestFatalLogsAndExits(t *testing.T) {
	if os.Getenv("NETPROFILE_LOGGER_FATAL") == "1" {
		_, err := Init("error")
		if err != nil {
			os.Exit(3)
		}
		Fatal("netprofile failed", "error", "profile document declares no networks")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalLogsAndExits$")
	cmd.Env = append(os.Environ(), "NETPROFILE_LOGGER_FATAL=1")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), string(out))
	require.Equal(t, 1, exitErr.ExitCode())
	require.Contains(t, string(out), "netprofile failed")
	require.Contains(t, string(out), "declares no networks")
}
