package main

import (
	"fmt"

	"github.com/Catneko-0422/tuerulebase/internal/validator"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/file"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check rule trees for structural problems",
	Long: `Lints the configured store, or a rule document when FILE is given, and
reports missing parents, misplaced options, empty codes and bad value_regex patterns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			doc, err := file.Load(args[0])
			if err != nil {
				return err
			}
			store := memory.NewStore()
			if _, err := file.Import(ctx, store, doc); err != nil {
				return err
			}
			if err := validator.ValidateStore(ctx, store); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
		} else {
			env, err := setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := validator.ValidateStore(ctx, env.Store); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
		}

		fmt.Println("Rule trees are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
