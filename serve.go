package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/funcseg/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve segmentation over HTTP",
		Long: `Run an HTTP server exposing:

  POST /segment     {"source": "...", "raw": false} -> {"segments": [...]}
  POST /normalize   {"source": "...", "raw": false} -> {"text": "..."}
  GET  /health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}

			store, err := a.openCache()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			srv := &http.Server{
				Addr: a.cfg.Server.Addr,
				Handler: server.New(a.log, server.Options{
					MaxRequestSize: a.cfg.Server.MaxRequestSize,
					Cache:          store,
					Version:        version,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(cmd.Context(), srv, a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8095)")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, a *app) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr)
		_, _ = fmt.Fprintf(a.stderr, "listening on %s\n", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
