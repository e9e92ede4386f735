package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/config"
	httpAdapter "github.com/aretw0/automata/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the store over a JSON API: CRUD, validation, simulation, traces,
conversions, Mermaid graphs, SSE change events, websocket animation,
the exercise library and Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd, func(cfg *config.Config) {
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
			}
			if lib, _ := cmd.Flags().GetString("library"); lib != "" {
				cfg.Library.Dir = lib
			}
		})
		if err != nil {
			return err
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(a.Logger),
			httpAdapter.WithMetrics(a.Metrics, a.Registry),
			httpAdapter.WithSimulatorOptions(a.Config.SimulatorOptions()...),
		}
		lib, err := cli.OpenLibrary(a.Config)
		if err != nil {
			return err
		}
		if lib != nil {
			opts = append(opts, httpAdapter.WithLibrary(lib))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.Config.HTTP.Port),
			Handler:           httpAdapter.NewHandler(a.Manager, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			a.Logger.Info("HTTP server listening", "address", srv.Addr, "store", a.Config.Store.Backend)
			fmt.Fprintf(cmd.OutOrStdout(), "Starting Automata Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			a.Logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				a.Logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Automata Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides the config)")
	serveCmd.Flags().String("library", "", "Exercise directory (overrides the config)")
}
