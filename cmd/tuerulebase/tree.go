package main

import (
	"fmt"
	"strconv"

	"github.com/Catneko-0422/tuerulebase/internal/presentation/graph"
	"github.com/Catneko-0422/tuerulebase/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree RULE_ID",
	Short: "Show one rule's node tree",
	Long:  `Prints the rule's nodes as an outline, or as a Mermaid diagram (graph TD) with --mermaid.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid rule id %q: %w", args[0], err)
		}
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		env, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		rule, nodes, err := env.Engine.Inspect(cmd.Context(), ruleID)
		if err != nil {
			return err
		}

		if mermaid {
			fmt.Print(graph.GenerateMermaid(rule, nodes))
			return nil
		}
		out, err := tui.NewRenderer()(tui.NodesMarkdown(rule, nodes))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart instead of an outline")
}
