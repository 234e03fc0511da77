package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Catneko-0422/tuerulebase/internal/cli"
	"github.com/Catneko-0422/tuerulebase/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Assemble a part code from picked nodes",
	Long: `Picks follow one root-to-node path. Each --pick is NODE_ID,
NODE_ID:OPTION_ID for a STATIC node, or NODE_ID=VALUE for INPUT and SERIAL nodes.`,
	Example: `  tuerulebase compose --pick 1:3 --pick 4 --pick 5=4K7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("pick")
		asJSON, _ := cmd.Flags().GetBool("json")

		picks, err := cli.ParsePicks(raw)
		if err != nil {
			return err
		}

		env, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		comp, err := env.Engine.Compose(cmd.Context(), picks)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(comp)
		}
		md := tui.SegmentsMarkdown("Composed", comp.Code, comp.Segments)
		md += fmt.Sprintf("\nComplete: **%t**, length matches rule: **%t**\n", comp.Complete, comp.LengthOK)
		out, err := tui.NewRenderer()(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(composeCmd)
	composeCmd.Flags().StringArray("pick", nil, "A pick: ID, ID:OPTION_ID or ID=VALUE (repeatable)")
	composeCmd.Flags().Bool("json", false, "Print the composition as JSON")
	_ = composeCmd.MarkFlagRequired("pick")
}
