package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Catneko-0422/tuerulebase/internal/cli"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts tuerulebase as an MCP Server so agents can decode and compose codes as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		env, err := setup(sc, cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := mcp.NewServer(env.Engine)
		switch transport {
		case "stdio":
			// Keep stdout clean for JSON-RPC.
			log.SetOutput(os.Stderr)
			env.Logger.Info("Starting tuerulebase MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			env.Logger.Info("Starting tuerulebase MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(sc, port); err != nil {
				return err
			}
			env.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
