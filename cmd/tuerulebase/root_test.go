package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Catneko-0422/tuerulebase/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_StoreFlagWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: redis\n"), 0o644))
	t.Setenv("TUERULEBASE_STORE", "memory")

	cfg, err := loadConfig(newTestCmd(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store)

	cfg, err = loadConfig(newTestCmd(t, "--config", path, "--store", "sqlite"))
	require.NoError(t, err)
	assert.Equal(t, config.StoreSQLite, cfg.Store)

	_, err = loadConfig(newTestCmd(t, "--store", "nope"))
	assert.ErrorContains(t, err, "unknown store")
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"compose", "decode", "export", "import", "mcp", "serve", "tree", "validate", "version"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, w := range want {
		assert.Contains(t, got, w)
	}
}
