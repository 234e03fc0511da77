package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Catneko-0422/tuerulebase/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode CODE",
	Short: "Split a part code into labeled segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleID, _ := cmd.Flags().GetInt64("rule")
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Engine.Decode(cmd.Context(), args[0], ruleID)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		out, err := tui.NewRenderer()(tui.SegmentsMarkdown("Decoded", res.Code, res.Segments))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Int64("rule", 0, "Only try roots of this rule")
	decodeCmd.Flags().Bool("json", false, "Print the decoding as JSON")
}
