package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/Catneko-0422/tuerulebase/internal/cli"
	"github.com/Catneko-0422/tuerulebase/internal/presentation/tui"
	httpAdapter "github.com/Catneko-0422/tuerulebase/pkg/adapters/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Exposes rule management, decode and compose over a JSON API, plus /metrics and /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		env, err := setup(sc, cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()

		addr := env.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		handler, err := httpAdapter.NewHandler(env.Engine,
			httpAdapter.WithLogger(env.Logger),
			httpAdapter.WithGatherer(env.Registry),
		)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(tuerulebase.Version))
		}

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			env.Logger.Info("Starting tuerulebase server", "addr", addr, "store", env.Config.Store)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				env.Logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		env.Logger.Info("tuerulebase server stopped gracefully", "signal", fmt.Sprint(sc.Signal()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides config)")
}
