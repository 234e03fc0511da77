package main

import (
	"fmt"

	"github.com/Catneko-0422/tuerulebase/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import rules from a YAML or JSON document into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := file.Load(args[0])
		if err != nil {
			return err
		}

		env, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		rules, err := file.Import(cmd.Context(), env.Store, doc)
		if err != nil {
			return err
		}
		for _, r := range rules {
			fmt.Printf("Imported rule %d: %s\n", r.ID, r.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
