package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amaumene/gosubfetch/internal/constants"
	"github.com/amaumene/gosubfetch/internal/handlers"
	"github.com/amaumene/gosubfetch/internal/middleware"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve subtitles and run logs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if err := os.MkdirAll(cfg.SubtitlesDir, 0o755); err != nil {
				return fmt.Errorf("create subtitles dir: %w", err)
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.startMaintenance(runCtx)

			gin.SetMode(gin.ReleaseMode)
			r := gin.New()
			r.Use(gin.Recovery())
			r.Use(middleware.Logger(a.logger))
			r.Use(middleware.Metrics())
			r.Use(middleware.CORS())
			r.Use(middleware.Gzip(a.logger))
			handlers.New(a.services.Pipeline, cfg, nil, a.logger).RegisterRoutes(r)

			srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Infof("[App] starting HTTP server on port %s", cfg.Port)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-runCtx.Done():
			}

			a.logger.Infof("[App] shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides PORT)")
	return cmd
}
