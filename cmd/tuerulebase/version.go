package main

import (
	"fmt"
	"strings"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tuerulebase",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tuerulebase version %s\n", strings.TrimSpace(tuerulebase.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
