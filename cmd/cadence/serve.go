package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aretw0/cadence/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP collaboration server",
		Long:  `Serves documents over HTTP: commands, undo/redo, history, live events and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				a.cfg.HTTP.Port = port
			}
			ed, closeStore, err := a.editor()
			if err != nil {
				return err
			}
			defer closeStore()

			srv := &http.Server{
				Addr:              ":" + strconv.Itoa(a.cfg.HTTP.Port),
				Handler:           ed.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			out := cmd.OutOrStdout()
			tui.PrintBanner(out)

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				fmt.Fprintf(out, "Starting Cadence Server on %s\n", srv.Addr)
				fmt.Fprintf(out, "History backend: %s\n", a.cfg.History.Backend)
				serverErrors <- srv.ListenAndServe()
			}()

			// Channel to listen for interrupt or terminate signals.
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
				a.logger.Info("shutdown requested", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "err", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				fmt.Fprintln(out, "Cadence Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}
