package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Catneko-0422/tuerulebase/internal/cli"
	"github.com/Catneko-0422/tuerulebase/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tuerulebase",
	Short: "tuerulebase decodes part codes against tree-shaped coding rules",
	Long: `tuerulebase stores coding rules as trees of typed nodes and splits
part codes into labeled segments, or composes codes from picked nodes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./tuerulebase.yaml when present)")
	rootCmd.PersistentFlags().String("store", "", "Rule store backend: memory, sqlite or redis")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig resolves the config file, env overrides and global flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store = store
	}
	return cfg, cfg.Validate()
}

// setup builds the command environment. Callers must Close it.
func setup(ctx context.Context, cmd *cobra.Command, jsonLogs bool) (*cli.Env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Setup(ctx, cfg, cli.Options{Debug: debug, JSONLogs: jsonLogs})
}
