package main

import (
	"flag"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newLogContext(t *testing.T, level string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", "info", "")
	require.NoError(t, set.Set("log-level", level))
	return cli.NewContext(&cli.App{}, set, nil)
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, setupLogger(newLogContext(t, level)), level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(newLogContext(t, "loud"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestLoadAppRejectsBrokenConfig(t *testing.T) {
	path := t.TempDir() + "/iconsearch.yaml"
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: exotic\n"), 0o644))

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", path, "")
	ctx := cli.NewContext(&cli.App{}, set, nil)

	_, err := loadApp(ctx)
	assert.Error(t, err)
}
