package main

import (
	"os"

	"github.com/Catneko-0422/tuerulebase/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export every rule tree as a YAML or JSON document",
	Long:  `Writes to FILE (JSON when it ends in .json) or to stdout as YAML.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		doc, err := file.Export(cmd.Context(), env.Store)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return file.Save(args[0], doc)
		}
		return file.Encode(os.Stdout, doc, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Bool("json", false, "Write JSON to stdout instead of YAML")
}
