package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/handlers"
	"github.com/collection-tools/registrar/internal/pipeline"
	"github.com/collection-tools/registrar/internal/progress"
	"github.com/collection-tools/registrar/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface for pipeline runs",
		Long: `Starts the Registrar web interface on the specified port.

The interface starts pipeline jobs over the HTTP API and streams their
progress to the browser over a websocket. One job runs at a time; a
second submission is rejected until the first finishes.`,
		Example: `  # Start server on default port 8888
  registrar serve

  # Start server on custom port
  registrar serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			// A bad credential should surface now, not when the first job runs.
			provider, err := cfg.Provider()
			if err != nil {
				return err
			}

			store := storage.New()
			hub := progress.NewHub()
			runner := &pipeline.Runner{Config: cfg, Provider: provider}
			handler := handlers.New(store, hub, runner)

			hubCtx, cancelHub := context.WithCancel(context.Background())
			defer cancelHub()
			go hub.Run(hubCtx)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/jobs", handler.HandleJobs)
			mux.HandleFunc("/api/jobs/", handler.HandleJobDetail)
			mux.HandleFunc("/ws", handler.HandleProgress)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Registrar interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
